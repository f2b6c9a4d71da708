package api

import (
	"context"
	"strings"

	"github.com/bckpockets/droppy-scraper/app/database"
	"github.com/bckpockets/droppy-scraper/app/output"
)

// nameVariants lists name followed by its plural and singular spellings.
func nameVariants(name string) []string {
	variants := []string{name, name + "s", name + "es"}
	if trimmed, ok := strings.CutSuffix(name, "s"); ok && trimmed != "" {
		variants = append(variants, trimmed)
	}
	if trimmed, ok := strings.CutSuffix(name, "es"); ok && trimmed != "" {
		variants = append(variants, trimmed)
	}
	return variants
}

// lookupSources resolves a requested name to stored sources: by canonical
// identifier, then through the alias table, repeating both for plural and
// singular variants. It returns nil when nothing matches.
func lookupSources(ctx context.Context, repo database.SourceRepository, name string) ([]*database.Source, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}

	aliases, err := repo.GetAliases(ctx)
	if err != nil {
		return nil, err
	}

	for _, variant := range nameVariants(name) {
		if id := output.NormalizeFilename(variant); id != "" {
			source, err := repo.GetSource(ctx, id)
			if err != nil {
				return nil, err
			}
			if source != nil {
				return []*database.Source{source}, nil
			}
		}

		ids, ok := aliases[variant]
		if !ok {
			continue
		}
		var found []*database.Source
		for _, id := range ids {
			source, err := repo.GetSource(ctx, id)
			if err != nil {
				return nil, err
			}
			if source != nil {
				found = append(found, source)
			}
		}
		if len(found) > 0 {
			return found, nil
		}
	}

	return nil, nil
}
