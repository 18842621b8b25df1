package config

// SlugStore is the local store holding the tenant slug. OrganizationSlug
// writes the default back when nothing is stored.
type SlugStore interface {
	OrganizationSlug() (string, error)
}

// ResolveOrganizationSlug picks the tenant: flag, then config/env, then the
// store. The store is always consulted so a missing slug gets its default
// persisted.
func ResolveOrganizationSlug(flag string, cfg Config, store SlugStore) (string, error) {
	stored, err := store.OrganizationSlug()
	if err != nil {
		return "", err
	}
	switch {
	case flag != "":
		return flag, nil
	case cfg.OrganizationSlug != "":
		return cfg.OrganizationSlug, nil
	}
	return stored, nil
}
