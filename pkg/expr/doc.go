// Package expr compiles boolean rules such as
// `player.hasmedia + [!player.paused | skin.hassetting(showpaused)]` into an
// evaluation tree. Operands are condition names resolved through a
// condition.Lookup at compile time; evaluation walks the tree with a
// condition.Resolver, short-circuiting AND/OR groups from left to right so
// conditions whose value cannot change the outcome are never resolved.
// Compiled trees are immutable and safe for concurrent evaluation.
package expr
