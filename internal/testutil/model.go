package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strings"

	"github.com/makeXnow/BrainTrust-AI/model"
)

// Request kinds recognised by Classify.
const (
	KindPanel      = "panel"
	KindDetails    = "details"
	KindResponse   = "response"
	KindSuggestion = "suggestion"
	KindSelection  = "selection"
	KindRewrite    = "rewrite"
	KindUnknown    = "unknown"
)

var (
	nameLine = regexp.MustCompile(`(?m)^Name: (\S+)`)
	youAre   = regexp.MustCompile(`^You are ([^,]+),`)
	count    = regexp.MustCompile(`Create (\d+) diverse panelists`)
	list     = regexp.MustCompile(`from this list: ([^\n]+)\.`)
)

// Classify maps a request built from the default prompts to its kind.
func Classify(req model.Request) string {
	p := req.Prompt()
	switch {
	case strings.Contains(p, "diverse panelists"):
		return KindPanel
	case strings.Contains(p, "detailed character profile"):
		return KindDetails
	case strings.Contains(p, "neutral discussion moderator"):
		return KindSuggestion
	case strings.Contains(p, "choose who should talk next"):
		return KindSelection
	case strings.Contains(p, "language that is not allowed"):
		return KindRewrite
	case strings.Contains(p, `"publicComment"`):
		return KindResponse
	}
	return KindUnknown
}

// CountKinds tallies requests by Classify.
func CountKinds(reqs []model.Request) map[string]int {
	out := map[string]int{}
	for _, r := range reqs {
		out[Classify(r)]++
	}
	return out
}

// PanelNames are the first names PanelResponder hands out, in order.
var PanelNames = []string{"Alice", "Bob", "Cara", "Dan", "Eve", "Finn", "Gus", "Hana"}

// PanelResponder answers every request of a discussion built from the default
// prompts with well-formed JSON. Moderator selections pick the first allowed
// name.
func PanelResponder(_ context.Context, req model.Request) (string, error) {
	p := req.Prompt()
	switch Classify(req) {
	case KindPanel:
		n := 3
		if m := count.FindStringSubmatch(p); m != nil {
			_, _ = fmt.Sscanf(m[1], "%d", &n)
		}
		items := make([]string, 0, n)
		for i := 0; i < n && i < len(PanelNames); i++ {
			items = append(items, fmt.Sprintf(`{"firstName":%q,"shortDescription":"Analyst %d","communicationStyle":"Punchy and direct"}`, PanelNames[i], i+1))
		}
		return `{"panelists":[` + strings.Join(items, ",") + `]}`, nil
	case KindDetails:
		name := "Expert"
		if m := nameLine.FindStringSubmatch(p); m != nil {
			name = m[1]
		}
		return fmt.Sprintf(`{"shortDescription":"Senior %s","fullPersonality":"Has seen it all.","physicalDescription":"Navy suit, short hair.","introMessage":"Hi, I'm %s."}`, name, name), nil
	case KindResponse:
		name := "Someone"
		if m := youAre.FindStringSubmatch(p); m != nil {
			name = m[1]
		}
		return fmt.Sprintf(`{"thoughts":"Weighing it up.","publicComment":"%s thinks it depends on the industry."}`, name), nil
	case KindSuggestion:
		return `{"userResponse":"What about hybrid setups?"}`, nil
	case KindSelection:
		chosen := ""
		if m := list.FindStringSubmatch(p); m != nil {
			chosen = strings.TrimSpace(strings.Split(m[1], ",")[0])
		}
		return fmt.Sprintf(`{"reasoning":{},"chosen":%q}`, chosen), nil
	case KindRewrite:
		return `{"thoughts":"Cleaned up.","publicComment":"Let me put that more politely."}`, nil
	}
	return "", fmt.Errorf("unexpected prompt: %.60s", p)
}

// NewPanelModel returns a MockModel answering with PanelResponder.
func NewPanelModel() *model.MockModel {
	return model.NewMockModel("scripted", PanelResponder)
}

// FramedPNG encodes a size×size white image with a filled square of c inset
// by margin pixels.
func FramedPNG(size, margin int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.White)
			if x >= margin && x < size-margin && y >= margin && y < size-margin {
				img.Set(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// NewPortraitModel returns a MockImageModel answering with inline PNG bytes.
func NewPortraitModel() *model.MockImageModel {
	return model.NewMockImageModel("scripted-image", func(context.Context, model.ImageRequest) (model.ImageResponse, error) {
		return model.ImageResponse{Data: FramedPNG(64, 12, color.RGBA{R: 30, G: 60, B: 200, A: 255})}, nil
	})
}
