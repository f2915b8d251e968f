package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"

	"visit/shared/constant"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

var knownRoles = []string{constant.RoleWorker, constant.RoleHirer}

// Permission lists the roles allowed on one route pattern. Skip opens the route to
// unauthenticated callers.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether a caller with role may use the route. An empty role list allows every role.
func (p Permission) Allows(role string) bool {
	return p.Skip || len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

func indexKey(path, method string) string {
	return method + " " + path
}

func (r *PermissionData) FindPermissions(path, method string) Permission {
	if r.index != nil {
		return r.index[indexKey(path, method)]
	}

	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && rp.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

func parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, err //nolint:wrapcheck
	}

	permissions.index = make(map[string]Permission, len(permissions.Endpoints))

	for _, endpoint := range permissions.Endpoints {
		key := indexKey(endpoint.Path, endpoint.Method)
		if _, dup := permissions.index[key]; dup {
			log.Warn().Str("endpoint", key).Msg("Duplicate permission entry, keeping the first")

			continue
		}

		for _, role := range endpoint.Permissions {
			if !slices.Contains(knownRoles, role) {
				log.Warn().Str("endpoint", key).Str("role", role).Msg("Permission entry names an unknown role")
			}
		}

		permissions.index[key] = endpoint
	}

	return &permissions, nil
}

// Get loads the embedded route permissions. It returns nil when the file does not decode, which
// makes RBAC deny every non-skipped route.
func Get() *PermissionData {
	permissions, err := parse(permissionsData)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
