package video

// FileChecker defines the interface for checking file existence
// This is used to validate that source files exist before a batch pass
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}
