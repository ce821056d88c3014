// Package snippet evaluates the small template language embedded in profile
// strings.
//
// A snippet mixes plain text with three template forms: literal passthroughs
// ({true}, {42}, {3.5}), named shortcuts ({fn}, {.lng}), and function
// snippets ({{ expr }}) evaluated by a tiny dynamically typed expression
// interpreter. Expressions see the slots of a Context (profile, input,
// output, stream, outputStream, chapter); member access through an absent
// slot propagates the undefined value instead of failing, which keeps
// guard-style expressions like "stream.tags && stream.tags.language" cheap
// to write.
package snippet
