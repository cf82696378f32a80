package provision

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/slotmap/internal/model"
)

//go:embed schema.cue
var schemaCUE string

//go:embed default.cue
var defaultCUE []byte

// CatalogError reports an invalid catalog file.
type CatalogError struct {
	File    string
	Message string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %s", e.File, e.Message)
}

type catalogFile struct {
	Rooms  []catalogRoom  `json:"rooms"`
	Blocks []catalogBlock `json:"blocks"`
}

type catalogRoom struct {
	ID         int    `json:"id"`
	Department string `json:"department"`
	Category   string `json:"category"`
}

type catalogBlock struct {
	Floor      int    `json:"floor"`
	First      int    `json:"first"`
	Last       int    `json:"last"`
	Department string `json:"department"`
	Category   string `json:"category"`
}

// LoadCatalog reads a CUE room catalog from path.
func LoadCatalog(path string) ([]model.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(path, data)
}

// DefaultRooms returns the built-in seed catalog: rooms 101-123 CSE lab,
// 201-223 EEE general and 301-323 CSE lab.
func DefaultRooms() ([]model.Room, error) {
	return ParseCatalog("default.cue", defaultCUE)
}

// ParseCatalog validates data against the catalog schema and expands it to
// rooms in id order. Duplicate ids are an error.
func ParseCatalog(name string, data []byte) ([]model.Room, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, &CatalogError{File: name, Message: err.Error()}
	}

	unified := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.Hidden(true)); err != nil {
		return nil, &CatalogError{File: name, Message: err.Error()}
	}

	var file catalogFile
	if err := unified.Decode(&file); err != nil {
		return nil, &CatalogError{File: name, Message: fmt.Sprintf("decode: %v", err)}
	}

	return expand(name, file)
}

func expand(name string, file catalogFile) ([]model.Room, error) {
	seen := make(map[model.RoomID]bool)
	var rooms []model.Room

	add := func(id int, dept, category string) error {
		r := model.Room{ID: model.RoomID(id), Department: dept, Category: model.Category(category)}
		if err := model.ValidateRoom(r); err != nil {
			return &CatalogError{File: name, Message: err.Error()}
		}
		if seen[r.ID] {
			return &CatalogError{File: name, Message: fmt.Sprintf("room %d listed twice", id)}
		}
		seen[r.ID] = true
		rooms = append(rooms, r)
		return nil
	}

	for _, b := range file.Blocks {
		for unit := b.First; unit <= b.Last; unit++ {
			if err := add(b.Floor*100+unit, b.Department, b.Category); err != nil {
				return nil, err
			}
		}
	}
	for _, r := range file.Rooms {
		if err := add(r.ID, r.Department, r.Category); err != nil {
			return nil, err
		}
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}
