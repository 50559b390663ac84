// Package openapi exposes the public contracts for reading component schemas
// out of OpenAPI 3 documents and writing structures back as components.
// Implementations live under internal/openapi to keep kin-openapi hidden
// from consumers; construct them through the root fieldtree package.
package openapi
