// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

// Names of the built-in recipes.
const (
	CommitRecipe  = "commit"
	PublishRecipe = "publish"
)

// ReleaseMessage is the commit message template used by the built-in publish recipe.
const ReleaseMessage = "Bump version to {{version}}"

// Default returns the built-in book used when no recipe file is found.
func Default() *Book {
	b, err := NewBook(
		&Recipe{
			Name:        CommitRecipe,
			Description: "Test, lint, format, then commit all changes and push",
			Params:      []string{"message"},
			Steps: []Step{
				{Name: "test", Run: []string{"cargo", "test"}},
				{Name: "lint", Run: []string{"cargo", "clippy", "--", "-D", "warnings"}},
				{Name: "format", Run: []string{"cargo", "fmt"}},
				{Name: "stage", Run: []string{"git", "add", "-A"}},
				{Name: "commit", Run: []string{"git", "commit", "-m", "{{message}}"}},
				{Name: "push", Run: []string{"git", "push"}},
			},
		},
		&Recipe{
			Name:        PublishRecipe,
			Description: "Commit a version bump, then publish the package",
			Params:      []string{"version"},
			Steps: []Step{
				{Name: "bump", Call: CommitRecipe, Args: []string{ReleaseMessage}},
				{Name: "publish", Run: []string{"cargo", "publish"}},
			},
		},
	)
	if err != nil {
		panic(err)
	}

	return b
}
