package types

// Page holds the extracted plain text of a single PDF page.
type Page struct {
	Number int    // 1-based page number
	Text   string // extracted plain text
}

// DocumentChunk is a slice of page text prepared for vector indexing.
type DocumentChunk struct {
	Content  string           // The actual text content
	Page     int              // Page number where the chunk is from
	Metadata DocumentMetadata // Associated metadata for the chunk
}

// DocumentMetadata contains metadata information for document chunks
type DocumentMetadata struct {
	Title      string // Title of the PDF document
	Document   string // Document identifier the chunk belongs to
	PageNum    int    // Current page number
	TotalPages int    // Total number of pages in the document
}

// DocumentServiceConfig contains configuration options for PDF processing
type DocumentServiceConfig struct {
	MaxChunkSize int // Maximum size for text chunks
	OverlapSize  int // Size of overlap between chunks
}

// Citation points a piece of answer text back at a document page.
type Citation struct {
	Page    int    `json:"page"`
	Preview string `json:"preview"`
}

type UploadRequest struct {
	Title  string   `json:"title"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}
