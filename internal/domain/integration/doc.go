// Package integration contains the Integration bounded context.
// This context manages the connection to the external commerce platform.
//
// Key concepts:
//   - CommercePlatform: Port interface for the platform's paginated catalog,
//     order, inventory and reorder operations
//   - PlatformOrder / PlatformLineItem: Value objects for pulled sales facts
//   - CollectionProduct / VariantStock: Value objects for live availability reads
//   - ErrReauthRequired: Machine-readable signal that a shop must reinstall
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
