// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing sessions ready for a round and scripted
// provider models. They are not intended for production usage.
package testutil
