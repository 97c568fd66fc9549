package mediatype

// MediaType maps one content type to its file extensions.
type MediaType struct {
	ContentType string   `yaml:"content_type"`
	Extensions  []string `yaml:"extensions"`
}

type typesFile struct {
	Types []MediaType `yaml:"types"`
}
