// Package builtin provides the default extension set: email, todo, draft,
// reminder, options and comparison. All renders tolerate partial payloads
// because they run on every streaming snapshot.
package builtin

import "github.com/capitalize-ai/extension-chat/internal/extension"

// All returns the default descriptors in registration order.
func All() []extension.Descriptor {
	return []extension.Descriptor{
		Email(),
		Todo(),
		Draft(),
		Reminder(),
		Options(),
		Comparison(),
	}
}
