package catalog

import "github.com/google/jsonschema-go/jsonschema"

// Built-in node type keys.
const (
	TypeImageBucket       = "image_bucket"
	TypeAudioBucket       = "audio_bucket"
	TypeVideoBucket       = "video_bucket"
	TypeTextBucket        = "text_bucket"
	TypeTranscription     = "transcription"
	TypeImageGeneration   = "image_generation"
	TypeQuoteExtraction   = "quote_extraction"
	TypeTextGeneration    = "text_generation"
	TypeImageTextMatching = "image_text_matching"
	TypeLinkedInPost      = "linkedin_post"
	TypeTikTokPost        = "tiktok_post"
	TypeEmailDraft        = "email_draft"
)

// SelectedFilesKey is the parameter under which bucket nodes store the ids
// of the files selected for downstream use.
const SelectedFilesKey = "selected_file_ids"

// Default returns a catalog populated with the built-in node set:
// media/text buckets, AI actions, and output nodes.
//
// Panics on an invalid built-in spec; that is a programmer error, not a
// runtime condition.
func Default() *Catalog {
	c := New()
	for _, s := range builtinSpecs() {
		if err := c.Register(s); err != nil {
			panic(err)
		}
	}
	return c
}

// stringArraySchema constrains a parameter to an array of strings.
func stringArraySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:  "array",
		Items: &jsonschema.Schema{Type: "string"},
	}
}

func bucketParams() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			SelectedFilesKey: stringArraySchema(),
		},
		Required: []string{SelectedFilesKey},
	}
}

func builtinSpecs() []Spec {
	return []Spec{
		{
			Type:        TypeImageBucket,
			Label:       "Image Bucket",
			Outputs:     []OutputPort{{Key: "images", Label: "Images", Type: TypeImageRef}},
			Defaults:    map[string]any{SelectedFilesKey: []string{}},
			PersistKeys: []string{SelectedFilesKey},
			Params:      bucketParams(),
			Bucket:      true,
			BucketLabel: "Image",
		},
		{
			Type:        TypeAudioBucket,
			Label:       "Audio Bucket",
			Outputs:     []OutputPort{{Key: "audio", Label: "Audio", Type: TypeAudioRef}},
			Defaults:    map[string]any{SelectedFilesKey: []string{}},
			PersistKeys: []string{SelectedFilesKey},
			Params:      bucketParams(),
			Bucket:      true,
			BucketLabel: "Audio",
		},
		{
			Type:        TypeVideoBucket,
			Label:       "Video Bucket",
			Outputs:     []OutputPort{{Key: "video", Label: "Video", Type: TypeVideoRef}},
			Defaults:    map[string]any{SelectedFilesKey: []string{}},
			PersistKeys: []string{SelectedFilesKey},
			Params:      bucketParams(),
			Bucket:      true,
			BucketLabel: "Video",
		},
		{
			Type:        TypeTextBucket,
			Label:       "Text Bucket",
			Outputs:     []OutputPort{{Key: "documents", Label: "Documents", Type: TypeText}},
			Defaults:    map[string]any{SelectedFilesKey: []string{}},
			PersistKeys: []string{SelectedFilesKey},
			Params:      bucketParams(),
			Bucket:      true,
			BucketLabel: "Text",
		},
		{
			Type:  TypeTranscription,
			Label: "Transcription",
			Inputs: []InputPort{
				{Key: "media", Label: "Audio/Video", Type: TypeAudioRef},
			},
			Outputs: []OutputPort{
				{Key: "transcript", Label: "Transcript", Type: TypeText},
				{Key: "segments", Label: "Segments", Type: TypeJSON},
			},
			Defaults:    map[string]any{"language": "auto"},
			PersistKeys: []string{"language"},
			Params: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"language": {Type: "string"},
				},
			},
		},
		{
			Type:  TypeImageGeneration,
			Label: "Image Generation",
			Inputs: []InputPort{
				{Key: "prompt", Label: "Prompt", Type: TypeText},
			},
			Outputs: []OutputPort{
				{Key: "image", Label: "Image", Type: TypeImageRef},
			},
			Defaults: map[string]any{
				"preset_id":         "",
				"aspect_ratio":      "1:1",
				"selected_image_id": "",
			},
			PersistKeys: []string{"preset_id", "aspect_ratio"},
			Params: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"preset_id":    {Type: "string"},
					"aspect_ratio": {Type: "string", Enum: []any{"1:1", "4:5", "16:9", "9:16"}},
				},
			},
		},
		{
			Type:  TypeQuoteExtraction,
			Label: "Quote Extraction",
			Inputs: []InputPort{
				{Key: "transcript", Label: "Transcript", Type: TypeText},
			},
			Outputs: []OutputPort{
				{Key: "quotes", Label: "Quotes", Type: TypeJSON},
			},
			Defaults:    map[string]any{"max_quotes": 5},
			PersistKeys: []string{"max_quotes"},
			Params: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"max_quotes": {Type: "integer"},
				},
			},
		},
		{
			Type:  TypeTextGeneration,
			Label: "Text Generation",
			Inputs: []InputPort{
				{Key: "context", Label: "Context", Type: TypeText},
			},
			Outputs: []OutputPort{
				{Key: "generated_text", Label: "Generated Text", Type: TypeText},
			},
			Defaults: map[string]any{
				"preset_id": "",
				"tone":      "neutral",
			},
			PersistKeys: []string{"preset_id", "tone"},
			Params: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"preset_id": {Type: "string"},
					"tone":      {Type: "string"},
				},
			},
		},
		{
			Type:  TypeImageTextMatching,
			Label: "Image-Text Matching",
			Inputs: []InputPort{
				{Key: "text", Label: "Text", Type: TypeText},
				{Key: "images", Label: "Images", Type: TypeImageRef},
			},
			Outputs: []OutputPort{
				{Key: "matches", Label: "Matches", Type: TypeJSON},
			},
			Defaults:    map[string]any{"selected_image_ids": []string{}},
			PersistKeys: []string{"selected_image_ids"},
			Params: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"selected_image_ids": stringArraySchema(),
				},
			},
		},
		{
			Type:  TypeLinkedInPost,
			Label: "LinkedIn Post",
			Inputs: []InputPort{
				{Key: "content", Label: "Content", Type: TypeText},
				{Key: "image", Label: "Image", Type: TypeImageRef},
			},
			Outputs: []OutputPort{
				{Key: "post", Label: "Post", Type: TypeJSON},
			},
			Defaults:    map[string]any{"include_hashtags": true},
			PersistKeys: []string{"include_hashtags"},
			Params: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"include_hashtags": {Type: "boolean"},
				},
			},
		},
		{
			Type:  TypeTikTokPost,
			Label: "TikTok Post",
			Inputs: []InputPort{
				{Key: "video", Label: "Video", Type: TypeVideoRef},
				{Key: "caption", Label: "Caption", Type: TypeText},
			},
			Outputs: []OutputPort{
				{Key: "post", Label: "Post", Type: TypeJSON},
			},
			Defaults:    map[string]any{},
			PersistKeys: nil,
		},
		{
			Type:  TypeEmailDraft,
			Label: "Email Draft",
			Inputs: []InputPort{
				{Key: "body", Label: "Body", Type: TypeText},
			},
			Outputs: []OutputPort{
				{Key: "draft", Label: "Draft", Type: TypeJSON},
			},
			Defaults:    map[string]any{"subject_hint": ""},
			PersistKeys: []string{"subject_hint"},
			Params: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"subject_hint": {Type: "string"},
				},
			},
		},
	}
}
