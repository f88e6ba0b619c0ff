package store_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/podstore/pkg/accessor/memory"
	"github.com/marmos91/podstore/pkg/rdfio"
	"github.com/marmos91/podstore/pkg/resource"
	"github.com/marmos91/podstore/pkg/store"
)

const testBase = "http://example.com/store/"

var testTitle = rdf.IRI{Value: "http://purl.org/dc/terms/title"}

func newTestStore(t *testing.T, names ...string) *store.AccessorStore {
	t.Helper()

	cfg := store.Config{
		Accessor: memory.New(testBase),
		Base:     testBase,
	}
	if len(names) > 0 {
		queue := names
		cfg.NameGenerator = func() string {
			name := queue[0]
			if len(queue) > 1 {
				queue = queue[1:]
			}
			return name
		}
	}

	s, err := store.New(cfg)
	require.NoError(t, err)
	return s
}

func dataRepr(id resource.Identifier, content string) *resource.Representation {
	return resource.BytesRepresentation(resource.NewMetadata(id), []byte(content))
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	buf, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	return string(buf)
}

func TestStore_OutOfBaseIsNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	outside := resource.ID("http://elsewhere.com/doc")

	_, err := s.GetRepresentation(ctx, outside)
	assert.True(t, resource.IsNotFoundError(err))

	_, err = s.AddResource(ctx, outside, dataRepr(outside, ""))
	assert.True(t, resource.IsNotFoundError(err))

	err = s.SetRepresentation(ctx, outside, dataRepr(outside, ""))
	assert.True(t, resource.IsNotFoundError(err))

	err = s.ModifyResource(ctx, outside, nil)
	assert.True(t, resource.IsNotFoundError(err))

	err = s.DeleteResource(ctx, outside)
	assert.True(t, resource.IsNotFoundError(err))

	_, err = s.HasResource(ctx, outside)
	assert.True(t, resource.IsNotFoundError(err))
}

func TestStore_SetAndGetDataResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	id := resource.ID(testBase + "doc")

	meta := resource.NewMetadata(id)
	meta.Add(testTitle, resource.StringLiteral("hello"))
	require.NoError(t, s.SetRepresentation(ctx, id,
		resource.BytesRepresentation(meta, []byte("content"))))

	repr, err := s.GetRepresentation(ctx, id)
	require.NoError(t, err)
	assert.True(t, repr.Binary)
	assert.Equal(t, "content", readAll(t, repr.Data))

	obj, ok := repr.Metadata.Get(testTitle)
	require.True(t, ok)
	assert.Equal(t, resource.StringLiteral("hello"), obj)
	assert.False(t, repr.Metadata.IsContainer())
}

func TestStore_SetRepresentation_MaterializesAncestors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	id := resource.ID(testBase + "a/b/c/doc")

	require.NoError(t, s.SetRepresentation(ctx, id, dataRepr(id, "deep")))

	repr, err := s.GetRepresentation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "deep", readAll(t, repr.Data))

	for _, path := range []string{"a/", "a/b/", "a/b/c/"} {
		meta, err := s.GetRepresentation(ctx, resource.ID(testBase+path))
		require.NoError(t, err, path)
		assert.True(t, meta.Metadata.IsContainer(), path)
		require.NoError(t, meta.Data.Close())
	}

	rootRepr, err := s.GetRepresentation(ctx, resource.ID(testBase))
	require.NoError(t, err)
	defer rootRepr.Data.Close()
	assert.Equal(t, []resource.Identifier{resource.ID(testBase + "a/")},
		rootRepr.Metadata.ContainedResources())
}

func TestStore_ContainerRepresentation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	c := resource.ID(testBase + "c/")
	docID := resource.ID(testBase + "c/a")
	subID := resource.ID(testBase + "c/b/")

	require.NoError(t, s.SetRepresentation(ctx, docID, dataRepr(docID, "a")))
	require.NoError(t, s.SetRepresentation(ctx, subID,
		resource.BytesRepresentation(resource.NewMetadata(subID), nil)))

	repr, err := s.GetRepresentation(ctx, c)
	require.NoError(t, err)
	assert.False(t, repr.Binary)
	assert.Equal(t, resource.ContentTypeQuads, repr.Metadata.ContentType())
	assert.ElementsMatch(t, []resource.Identifier{docID, subID},
		repr.Metadata.ContainedResources())

	quads, err := rdfio.ParseQuads(ctx, repr.Data, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, repr.Metadata.Quads(), quads)
}

func TestStore_ContainerBodyIsLazy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	repr, err := s.GetRepresentation(ctx, resource.ID(testBase))
	require.NoError(t, err)

	// Quads added after the representation was produced, but before the body
	// is consumed, still show up in the serialized body.
	repr.Metadata.Add(testTitle, resource.StringLiteral("late"))

	quads, err := rdfio.ParseQuads(ctx, repr.Data, "")
	require.NoError(t, err)

	var found bool
	for _, q := range quads {
		if q.P == testTitle {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStore_AddResource_WithSlug(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	root := resource.ID(testBase)

	meta := resource.NewMetadata(root)
	meta.Add(resource.SlugHint, resource.StringLiteral("notes"))
	id, err := s.AddResource(ctx, root, resource.BytesRepresentation(meta, []byte("content")))
	require.NoError(t, err)
	assert.Equal(t, testBase+"notes", id.Path)

	repr, err := s.GetRepresentation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "content", readAll(t, repr.Data))

	// The suggested-name hint is request-only and never persisted.
	_, ok := repr.Metadata.Get(resource.SlugHint)
	assert.False(t, ok)
	for _, q := range repr.Metadata.Quads() {
		assert.NotEqual(t, resource.SlugHint, q.P)
	}
}

func TestStore_AddResource_SlugWithSlashCreatesContainer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	root := resource.ID(testBase)

	meta := resource.NewMetadata(root)
	meta.Add(resource.SlugHint, resource.StringLiteral("sub/"))
	id, err := s.AddResource(ctx, root, resource.BytesRepresentation(meta, nil))
	require.NoError(t, err)
	assert.Equal(t, testBase+"sub/", id.Path)

	repr, err := s.GetRepresentation(ctx, id)
	require.NoError(t, err)
	defer repr.Data.Close()
	assert.True(t, repr.Metadata.IsContainer())
}

func TestStore_AddResource_GeneratesNameWithoutSlug(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "generated")
	root := resource.ID(testBase)

	id, err := s.AddResource(ctx, root, dataRepr(root, "content"))
	require.NoError(t, err)
	assert.Equal(t, testBase+"generated", id.Path)
}

func TestStore_AddResource_SlugCollisionGetsFreshName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "fresh")
	root := resource.ID(testBase)
	existing := resource.ID(testBase + "notes")

	require.NoError(t, s.SetRepresentation(ctx, existing, dataRepr(existing, "old")))

	meta := resource.NewMetadata(root)
	meta.Add(resource.SlugHint, resource.StringLiteral("notes"))
	id, err := s.AddResource(ctx, root, resource.BytesRepresentation(meta, []byte("new")))
	require.NoError(t, err)
	assert.Equal(t, testBase+"fresh", id.Path)

	// The existing resource was not overwritten.
	repr, err := s.GetRepresentation(ctx, existing)
	require.NoError(t, err)
	assert.Equal(t, "old", readAll(t, repr.Data))
}

func TestStore_AddResource_UnderDataResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	doc := resource.ID(testBase + "doc")
	require.NoError(t, s.SetRepresentation(ctx, doc, dataRepr(doc, "content")))

	_, err := s.AddResource(ctx, doc, dataRepr(doc, "nested"))
	assert.True(t, resource.IsMethodNotAllowedError(err))
}

func TestStore_AddResource_MissingNonContainerParent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	parent := resource.ID(testBase + "nope")

	_, err := s.AddResource(ctx, parent, dataRepr(parent, "content"))
	assert.True(t, resource.IsNotFoundError(err))
}

func TestStore_AddResource_MissingContainerParentIsCreated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	parent := resource.ID(testBase + "new/")

	meta := resource.NewMetadata(parent)
	meta.Add(resource.SlugHint, resource.StringLiteral("doc"))
	id, err := s.AddResource(ctx, parent, resource.BytesRepresentation(meta, []byte("content")))
	require.NoError(t, err)
	assert.Equal(t, testBase+"new/doc", id.Path)

	repr, err := s.GetRepresentation(ctx, parent)
	require.NoError(t, err)
	defer repr.Data.Close()
	assert.True(t, repr.Metadata.IsContainer())
}

func TestStore_SetRepresentation_KindChangeConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	doc := resource.ID(testBase + "doc")
	require.NoError(t, s.SetRepresentation(ctx, doc, dataRepr(doc, "content")))

	meta := resource.NewMetadata(doc)
	meta.AddResourceType(true)
	err := s.SetRepresentation(ctx, doc, resource.BytesRepresentation(meta, nil))
	assert.True(t, resource.IsConflictError(err))
}

func TestStore_SetRepresentation_KindShapeDisagreement(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	id := resource.ID(testBase + "doc")

	meta := resource.NewMetadata(id)
	meta.AddResourceType(true)
	err := s.SetRepresentation(ctx, id, resource.BytesRepresentation(meta, nil))

	var storeErr *resource.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, resource.ErrUnsupportedKind, storeErr.Code)
}

func TestStore_SetRepresentation_CanonicalIdentifierConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	c := resource.ID(testBase + "c/")
	require.NoError(t, s.SetRepresentation(ctx, c,
		resource.BytesRepresentation(resource.NewMetadata(c), nil)))

	// "c" normalizes to the existing container "c/"; writing through the
	// non-canonical shape is rejected.
	bare := c.ToggleSlash()
	err := s.SetRepresentation(ctx, bare, dataRepr(bare, "content"))
	assert.True(t, resource.IsConflictError(err))
}

func TestStore_SetRepresentation_ContainerBodyFolded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	c := resource.ID(testBase + "c/")

	body := `<` + c.Path + `> <` + testTitle.Value + `> "folded" .` + "\n"
	require.NoError(t, s.SetRepresentation(ctx, c,
		resource.BytesRepresentation(resource.NewMetadata(c), []byte(body))))

	repr, err := s.GetRepresentation(ctx, c)
	require.NoError(t, err)
	defer repr.Data.Close()

	obj, ok := repr.Metadata.Get(testTitle)
	require.True(t, ok)
	assert.Equal(t, resource.StringLiteral("folded"), obj)
}

func TestStore_SetRepresentation_ClientContainmentRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	c := resource.ID(testBase + "c/")

	body := `<` + c.Path + `> <` + resource.LDPContains.Value + `> <` + c.Path + `child> .` + "\n"
	err := s.SetRepresentation(ctx, c,
		resource.BytesRepresentation(resource.NewMetadata(c), []byte(body)))
	assert.True(t, resource.IsConflictError(err))
}

func TestStore_SetRepresentation_MalformedContainerBody(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	c := resource.ID(testBase + "c/")

	err := s.SetRepresentation(ctx, c,
		resource.BytesRepresentation(resource.NewMetadata(c), []byte("not rdf at all")))

	var storeErr *resource.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, resource.ErrBadRequest, storeErr.Code)
}

func TestStore_ModifyResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	doc := resource.ID(testBase + "doc")
	require.NoError(t, s.SetRepresentation(ctx, doc, dataRepr(doc, "content")))

	err := s.ModifyResource(ctx, doc, dataRepr(doc, "patch"))
	assert.True(t, resource.IsNotImplementedError(err))
}

func TestStore_DeleteResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	doc := resource.ID(testBase + "doc")
	require.NoError(t, s.SetRepresentation(ctx, doc, dataRepr(doc, "content")))

	require.NoError(t, s.DeleteResource(ctx, doc))

	found, err := s.HasResource(ctx, doc)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_DeleteResource_Root(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	err := s.DeleteResource(ctx, resource.ID(testBase))
	assert.True(t, resource.IsMethodNotAllowedError(err))

	err = s.DeleteResource(ctx, resource.ID(strings.TrimSuffix(testBase, "/")))
	assert.True(t, resource.IsMethodNotAllowedError(err))
}

func TestStore_DeleteResource_NonEmptyContainer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	doc := resource.ID(testBase + "c/doc")
	require.NoError(t, s.SetRepresentation(ctx, doc, dataRepr(doc, "content")))

	err := s.DeleteResource(ctx, resource.ID(testBase+"c/"))
	assert.True(t, resource.IsConflictError(err))

	// Emptying the container makes it deletable.
	require.NoError(t, s.DeleteResource(ctx, doc))
	require.NoError(t, s.DeleteResource(ctx, resource.ID(testBase+"c/")))
}

func TestStore_HasResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	c := resource.ID(testBase + "c/")
	require.NoError(t, s.SetRepresentation(ctx, c,
		resource.BytesRepresentation(resource.NewMetadata(c), nil)))

	found, err := s.HasResource(ctx, c)
	require.NoError(t, err)
	assert.True(t, found)

	// Slash normalization applies to existence checks too.
	found, err = s.HasResource(ctx, c.ToggleSlash())
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.HasResource(ctx, resource.ID(testBase+"missing"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_New_Validation(t *testing.T) {
	t.Parallel()

	_, err := store.New(store.Config{Base: testBase})
	assert.Error(t, err)

	_, err = store.New(store.Config{Accessor: memory.New(testBase)})
	assert.Error(t, err)
}

func TestStore_UnsupportedRepresentation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	id := resource.ID(testBase + "doc")

	repr := &resource.Representation{
		Metadata: resource.NewMetadata(id),
		Data:     io.NopCloser(strings.NewReader("")),
		Binary:   false,
	}
	err := s.SetRepresentation(ctx, id, repr)
	assert.True(t, resource.IsUnsupportedMediaTypeError(err))
}
