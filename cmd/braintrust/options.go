package main

import (
	"github.com/jessevdk/go-flags"
)

// Options is the root command that groups sub-commands. The struct tags are
// interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Chat   *ChatCmd   `command:"chat"   description:"Start an interactive panel discussion"`
	Ask    *AskCmd    `command:"ask"    description:"Discuss a topic and print the transcript"`
	Topics *TopicsCmd `command:"topics" description:"Print random topic suggestions"`
}

// Init instantiates the sub-command referenced by the first argument so that
// flags.Parse can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "chat":
		o.Chat = &ChatCmd{}
	case "ask":
		o.Ask = &AskCmd{}
	case "topics":
		o.Topics = &TopicsCmd{}
	}
}

// Run parses args and executes the selected command.
func Run(args []string) error {
	opts := &Options{}
	var first string
	if len(args) > 0 {
		first = args[0]
	}
	opts.Init(first)

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	_, err := parser.ParseArgs(args)
	return err
}
