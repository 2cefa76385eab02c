package matcher

import (
	"reflect"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/go-git/go-billy/v5"
)

// Validator decides whether a candidate can fill a slot of a given type.
type Validator func(fs billy.Basic, candidate any) bool

var validators = map[models.SlotType]Validator{
	models.SlotTypeIdentifierFile: isFile,
	models.SlotTypeDirectory:      isDirectory,
	models.SlotTypeDict:           isDict,
}

// Accepts reports whether candidate is valid for slotType. Unknown slot types accept nothing.
func Accepts(fs billy.Basic, slotType models.SlotType, candidate any) bool {
	validate, ok := validators[slotType]
	if !ok {
		return false
	}

	return validate(fs, candidate)
}

func isFile(fs billy.Basic, candidate any) bool {
	path, ok := candidate.(string)
	if !ok || path == "" {
		return false
	}

	info, err := fs.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

func isDirectory(fs billy.Basic, candidate any) bool {
	path, ok := candidate.(string)
	if !ok || path == "" {
		return false
	}

	info, err := fs.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func isDict(_ billy.Basic, candidate any) bool {
	if candidate == nil {
		return false
	}

	return reflect.TypeOf(candidate).Kind() == reflect.Map
}
