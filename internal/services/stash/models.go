package stash

import "strings"

const stashDBEndpointMarker = "stashdb.org"

// Scene is a scene record from the Stash library.
type Scene struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Date       string       `json:"date"`
	Studio     *Studio      `json:"studio"`
	StashIDs   []ExternalID `json:"stash_ids"`
	Performers []Performer  `json:"performers"`
	Files      []SceneFile  `json:"files"`
}

// Studio names the production studio attached to a scene.
type Studio struct {
	Name string `json:"name"`
}

// Performer names one performer attached to a scene.
type Performer struct {
	Name string `json:"name"`
}

// SceneFile is a media file backing a scene.
type SceneFile struct {
	Path string `json:"path"`
}

// ExternalID links a scene to an external metadata endpoint.
type ExternalID struct {
	Endpoint string `json:"endpoint"`
	StashID  string `json:"stash_id"`
}

// StashDBID returns the scene's StashDB identifier, or empty when the scene
// carries no StashDB link. Only StashDB IDs are usable for manager lookups;
// IDs from other endpoints are ignored.
func (s Scene) StashDBID() string {
	for _, id := range s.StashIDs {
		if strings.Contains(strings.ToLower(id.Endpoint), stashDBEndpointMarker) && id.StashID != "" {
			return id.StashID
		}
	}
	return ""
}

// StudioName returns the studio name, or empty when unset.
func (s Scene) StudioName() string {
	if s.Studio == nil {
		return ""
	}
	return s.Studio.Name
}

// PerformerNames flattens the performer list for logging and notifications.
func (s Scene) PerformerNames() []string {
	if len(s.Performers) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Performers))
	for _, p := range s.Performers {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		FindScenes struct {
			Count  int     `json:"count"`
			Scenes []Scene `json:"scenes"`
		} `json:"findScenes"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}
