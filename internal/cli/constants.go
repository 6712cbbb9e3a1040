package cli

// Default values for CLI flags and formatted output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// MaxNameLength is the maximum length of an archive name in the catalog table.
	MaxNameLength = 70
	// expectedFromCatalog makes validate fetch the catalog to learn the expected count.
	expectedFromCatalog = -1
)
