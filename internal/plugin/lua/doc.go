// Package lua runs user-supplied Lua scripts in a sandboxed gopher-lua state.
//
// Deckstorm uses it for save validation: a script defines a global
// validate(content) function that returns true to accept the document, or
// false and a message to reject it.
//
//	v, err := lua.NewValidatorFromFile("validate.lua")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	if err := v.Validate(ctx, content); err != nil {
//	    // rejected
//	}
//
// # Sandbox
//
// The sandbox opens only the base, table, string and math libraries,
// removes dofile/loadfile/load, and replaces require with a whitelist that
// also exposes the preloaded "deck" helper module:
//
//	local deck = require("deck")
//	deck.slides(content)   -- number of slides split on --- lines
//	deck.blank(content)    -- true when only whitespace
//	deck.lines(content)    -- number of lines
package lua
