package store

// The following are the names of buckets used by the database.
const (
	bucketModule   = "module"
	bucketRevision = "revision"
	bucketSource   = "source"
)
