package dto

type DocumentPageDTO struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	HasImage bool   `json:"has_image"`
}

type UploadDocumentResponse struct {
	FileName  string            `json:"file_name"`
	PageCount int               `json:"page_count"`
	Pages     []DocumentPageDTO `json:"pages"`
	// Warning is set when the document opened fine but produced no usable
	// content; the upload still succeeds.
	Warning string `json:"warning,omitempty"`
}
