package aggregation

// MetadataCache holds the last ship type code reported for each vessel.
// Entries are never evicted, so it grows with the number of distinct
// vessels seen over the process lifetime. Owned by a single Engine; not
// safe for concurrent use.
type MetadataCache struct {
	types map[int64]int
}

func NewMetadataCache() *MetadataCache {
	return &MetadataCache{types: make(map[int64]int)}
}

// Upsert records the type code for a vessel, last write wins.
func (c *MetadataCache) Upsert(vesselID int64, typeCode int) {
	c.types[vesselID] = typeCode
}

// Lookup returns the cached type code, or ok=false if the vessel has never
// reported static data.
func (c *MetadataCache) Lookup(vesselID int64) (int, bool) {
	code, ok := c.types[vesselID]
	return code, ok
}

func (c *MetadataCache) Len() int {
	return len(c.types)
}
