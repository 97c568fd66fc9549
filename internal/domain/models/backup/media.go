package backup

// MediaAsset is an uploaded binary referenced from project content.
//
// ZipPath and Ext describe where the bytes live inside an archive; StoragePath
// is the blob store key and never leaves the server.
type MediaAsset struct {
	ID           string  `json:"id"`
	ProjectID    *string `json:"projectId"`
	OriginalName *string `json:"originalName"`
	MimeType     string  `json:"mimeType"`
	Size         int64   `json:"size"`
	URL          string  `json:"url"`
	ZipPath      string  `json:"zipPath,omitempty"`
	Ext          string  `json:"ext,omitempty"`
	StoragePath  string  `json:"-"`
}
