// Package game holds the trainer's domain model: streets, table positions,
// actions and the immutable Situation a decision is made in. It also
// deals random training spots and decides which actions are legal.
package game
