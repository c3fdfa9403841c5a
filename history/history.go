// Package history tracks and persists successful resolutions.
package history

import (
	"github.com/farsistream-cli/farsistream/filesystem"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/where"
	"github.com/metafates/gache"
)

// cacher provides an abstracted, disk-backed registry for resolution records.
var cacher = gache.New[map[string]*Record](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of resolution records from the persistent store.
func Get() (map[string]*Record, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// Save persists a successful resolution. Re-resolving the same page
// overwrites its record, keeping the freshest quality and timestamp.
func Save(page *source.Page, sources []*source.Video) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newRecord(page, sources)
	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a record from the history registry.
func Remove(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return cacher.Set(saved)
}
