// Package dom is the render target of the binding engine: a small in-memory
// document tree with the capabilities the directives need (insertBefore,
// replaceChild, remove, cloneNode, attributes, event listeners) plus HTML
// parsing and serialization.
//
// Every structural or attribute change made to a node that is connected to
// its document is reported to the document's observers as a Mutation, which
// is how the live server turns binding updates into client patches and how
// tests count DOM moves.
package dom
