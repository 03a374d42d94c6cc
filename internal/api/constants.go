package api

// Cache-Control header values.
const (
	CacheNoStore = "no-store"
)

// Seed bounds for POST /api/v1/books/seed.
const (
	defaultSeedCount = 10
	maxSeedCount     = 500
)

const exportFilename = "books.csv"
