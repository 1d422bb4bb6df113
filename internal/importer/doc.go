// Package importer defines the importer capabilities a host offers the
// compiler and a set of ready-made implementations.
//
// A FileImporter maps an import specifier to a file on disk; the compiler
// loads the file itself. A CustomImporter both canonicalizes specifiers and
// loads their contents, which makes it suitable for stylesheets that do not
// live on the local file system.
//
// Implementations embed Identity to obtain the stable handle the compiler
// uses to address them in callback requests.
package importer
