package models

// Exposes the minting internals to the external test package.
var (
	MintAndCreate = mintAndCreate
	CreateHeader  = createHeader
)
