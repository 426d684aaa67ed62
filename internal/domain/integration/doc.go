// Package integration contains the ports for external systems.
//
// Key concepts:
//   - LLMProvider: streaming chat completion (Anthropic, Gemini)
//   - HostingProvider: static/framework deployments (Vercel)
//   - DomainRegistrar: availability, price and purchase of domains (Vercel Domains)
//   - PaymentProvider: customers, checkout and subscriptions (Stripe)
//   - RenderWorker: the persona studio GPU worker (RunPod serverless)
//   - ImageGenerator, PageRenderer, ObjectStorage, Mailer
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
