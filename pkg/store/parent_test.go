package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/podstore/pkg/resource"
	"github.com/marmos91/podstore/pkg/store"
)

func TestBaseContainerManager_Parent(t *testing.T) {
	t.Parallel()

	m := store.NewBaseContainerManager(testBase)

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"data resource", testBase + "a/b/doc", testBase + "a/b/"},
		{"container", testBase + "a/b/", testBase + "a/"},
		{"direct child of base", testBase + "doc", testBase},
		{"direct child container", testBase + "c/", testBase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			parent, err := m.Parent(resource.ID(tt.id))
			require.NoError(t, err)
			assert.Equal(t, tt.want, parent.Path)
		})
	}
}

func TestBaseContainerManager_Parent_Errors(t *testing.T) {
	t.Parallel()

	m := store.NewBaseContainerManager(testBase)

	_, err := m.Parent(resource.ID(testBase))
	assert.Error(t, err)

	_, err = m.Parent(resource.ID("http://elsewhere.com/doc"))
	assert.Error(t, err)
}
