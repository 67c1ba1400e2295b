package env

import (
	"slices"

	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
)

// MkModuleData collects what the current module has contributed to e: its
// declarations, the entries added to every persistent extension and its
// modifications serialized by codec.
//
// Declarations in an imported environment that came from the imported modules
// are not included; an environment that was never switched to shared mode
// contributes all its declarations. They are sorted by name.QuickCmp.
func MkModuleData(e *Environment, codec ModificationCodec) (*modfile.ModuleData, error) {
	if codec == nil {
		codec = NoModifications
	}
	var constants []decl.Declaration
	collect := func(_ name.Name, d decl.Declaration) bool {
		constants = append(constants, d)
		return true
	}
	if e.constants.IsStage1() {
		e.constants.ForEach(collect)
	} else {
		e.constants.ForEachStage2(collect)
	}
	slices.SortFunc(constants, func(a, b decl.Declaration) int {
		return name.QuickCmp(a.Name, b.Name)
	})

	exts := e.registry.persistentExtensions()
	entries := make([]modfile.ExtensionEntries, 0, len(exts))
	for _, x := range exts {
		entries = append(entries, modfile.ExtensionEntries{
			Extension: x.extName(), Entries: x.exportEntries(e)})
	}

	mods, err := codec.Serialize(e.Modifications())
	if err != nil {
		return nil, err
	}
	return &modfile.ModuleData{
		Imports:       e.Imports(),
		Constants:     constants,
		Entries:       entries,
		Modifications: mods,
	}, nil
}

// SaveModule writes the module data of e to path.
func SaveModule(e *Environment, path string, codec ModificationCodec) error {
	d, err := MkModuleData(e, codec)
	if err != nil {
		return err
	}
	logger.Printf("saving %d constants to %s", len(d.Constants), path)
	return modfile.Write(path, d)
}
