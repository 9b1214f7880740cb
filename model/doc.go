// Package model defines the provider-agnostic collaborator abstractions used
// by the discussion engine for text and image generation.
//
// Core goals:
//   - Unify streaming + non-streaming text generation behind a single interface
//   - Treat the provider wire format as an opaque request/response boundary
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight scripted mocking for tests (MockModel, MockImageModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the interfaces from this
// package so higher layers (agent, assembly, avatar) remain decoupled from vendor SDKs.
package model
