// Package modsys models the host framework's import machinery as an explicit,
// process-scoped value instead of ambient globals.
//
// A System owns three things:
//
//   - the resolver chain: Finders consulted in registration order before the
//     default path finder;
//   - the module cache: every module that has been (or is being) imported,
//     keyed by dotted path;
//   - mounted sources: "on-disk" modules published at slash-separated
//     locations, found by walking the parent package's search path.
//
// Modules are namespaces of named bindings. A module is published to the cache
// before it is populated so that circular imports observe the same object; the
// Complete flag distinguishes a fully populated module from one that is still
// being built, and attribute lookups on an incomplete module report that
// explicitly instead of returning a bare "not found".
package modsys
