package dto

type UploadResponse struct {
	TempId           string `json:"temp_id"`
	OriginalFilename string `json:"original_filename"`
	SizeBytes        int64  `json:"size_bytes"`
}
