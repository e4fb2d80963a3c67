// Package model defines the provider-agnostic request / response shapes the
// flow exchanges with language models, plus MockModel for tests and offline
// runs.
//
// Providers live in subpackages (openai, anthropic) so the SDKs stay out of
// packages that do not need them.
package model
