package parser

import (
	"errors"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/starford/taskparser/internal/storage"
	"github.com/starford/taskparser/internal/tags"
)

// FolderMetaFile is the per-folder metadata file name.
const FolderMetaFile = ".taskparser.yaml"

// FolderMeta is the decoded content of a folder metadata file.
type FolderMeta struct {
	Tags   tags.Map
	Ignore bool
}

type folderMetaFile struct {
	Tags   yaml.Node `yaml:"tags"`
	Ignore bool      `yaml:"ignore"`
}

// ReadFolderMeta reads the metadata file of dir. A missing file yields empty
// metadata; a file that cannot be decoded is an error naming its path.
func ReadFolderMeta(store storage.Provider, dir string) (FolderMeta, error) {
	meta := FolderMeta{Tags: tags.Map{}}
	p := path.Join(dir, FolderMetaFile)

	data, err := store.Read(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return meta, nil
		}
		return meta, err
	}

	var raw folderMetaFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return meta, &YAMLError{Path: p, Meta: true, Err: err}
	}
	if raw.Tags.Kind != 0 && raw.Tags.Kind != yaml.MappingNode && raw.Tags.Tag != "!!null" {
		return meta, &YAMLError{Path: p, Meta: true, Err: errors.New("tags must be a mapping")}
	}
	tags.FromNode(&raw.Tags, meta.Tags)
	meta.Ignore = raw.Ignore
	return meta, nil
}
