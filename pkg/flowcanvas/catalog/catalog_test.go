package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"
)

func TestDefault_ContainsBuiltins(t *testing.T) {
	c := catalog.Default()

	for _, typ := range []string{
		catalog.TypeImageBucket,
		catalog.TypeAudioBucket,
		catalog.TypeVideoBucket,
		catalog.TypeTextBucket,
		catalog.TypeTranscription,
		catalog.TypeImageGeneration,
		catalog.TypeQuoteExtraction,
		catalog.TypeTextGeneration,
		catalog.TypeImageTextMatching,
		catalog.TypeLinkedInPost,
		catalog.TypeTikTokPost,
		catalog.TypeEmailDraft,
	} {
		assert.True(t, c.Has(typ), "missing builtin %s", typ)
	}
	assert.Equal(t, 12, c.Len())
}

func TestGet_UnknownType(t *testing.T) {
	c := catalog.Default()

	_, ok := c.Get("does_not_exist")
	assert.False(t, ok)

	// The placeholder itself is never a registered type.
	_, ok = c.Get(catalog.PlaceholderType)
	assert.False(t, ok)
}

func TestSpec_PortLookup(t *testing.T) {
	c := catalog.Default()

	spec, ok := c.Get(catalog.TypeTextGeneration)
	require.True(t, ok)

	out, ok := spec.OutputPort("generated_text")
	require.True(t, ok)
	assert.Equal(t, catalog.TypeText, out.Type)

	in, ok := spec.InputPort("context")
	require.True(t, ok)
	assert.Equal(t, catalog.TypeText, in.Type)

	assert.False(t, spec.HasOutput("context"))
	assert.False(t, spec.HasInput("generated_text"))
}

func TestSpec_PortKeysUnique(t *testing.T) {
	c := catalog.Default()

	for _, typ := range c.Types() {
		spec, ok := c.Get(typ)
		require.True(t, ok)

		inputs := make(map[string]bool)
		for _, p := range spec.Inputs {
			assert.False(t, inputs[p.Key], "%s: duplicate input %s", typ, p.Key)
			inputs[p.Key] = true
		}
		outputs := make(map[string]bool)
		for _, p := range spec.Outputs {
			assert.False(t, outputs[p.Key], "%s: duplicate output %s", typ, p.Key)
			outputs[p.Key] = true
		}
	}
}

func TestRegister_RejectsInvalidSpecs(t *testing.T) {
	c := catalog.New()

	err := c.Register(catalog.Spec{Type: catalog.PlaceholderType})
	assert.Error(t, err)

	err = c.Register(catalog.Spec{
		Type: "dup_ports",
		Inputs: []catalog.InputPort{
			{Key: "a", Type: catalog.TypeText},
			{Key: "a", Type: catalog.TypeJSON},
		},
	})
	assert.Error(t, err)

	err = c.Register(catalog.Spec{})
	assert.Error(t, err)
}

func TestBucketSpecs(t *testing.T) {
	c := catalog.Default()

	labels := map[string]string{
		catalog.TypeImageBucket: "Image",
		catalog.TypeAudioBucket: "Audio",
		catalog.TypeVideoBucket: "Video",
		catalog.TypeTextBucket:  "Text",
	}
	for typ, label := range labels {
		spec, ok := c.Get(typ)
		require.True(t, ok)
		assert.True(t, spec.Bucket)
		assert.Equal(t, label, spec.BucketLabel)
		assert.Contains(t, spec.Defaults, catalog.SelectedFilesKey)
		assert.Contains(t, spec.PersistKeys, catalog.SelectedFilesKey)
	}

	spec, _ := c.Get(catalog.TypeTextGeneration)
	assert.False(t, spec.Bucket)
}

func TestParamsSchema_Validates(t *testing.T) {
	c := catalog.Default()

	spec, ok := c.Get(catalog.TypeImageBucket)
	require.True(t, ok)
	require.NotNil(t, spec.Params)

	resolved, err := spec.Params.Resolve(nil)
	require.NoError(t, err)

	assert.NoError(t, resolved.Validate(map[string]any{
		catalog.SelectedFilesKey: []any{"file-1", "file-2"},
	}))
	assert.Error(t, resolved.Validate(map[string]any{
		catalog.SelectedFilesKey: "not-an-array",
	}))
}
