package membership

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// replicaActive is the state of a replica serving requests.
const replicaActive = "active"

type replicaState struct {
	State   string `json:"state"`
	BaseURL string `json:"base_url"`
}

type shardState struct {
	Replicas map[string]replicaState `json:"replicas"`
}

// collectionState is the state of one collection as published by SolrCloud,
// either in /collections/<name>/state.json or in the legacy /clusterstate.json.
type collectionState struct {
	Shards map[string]shardState `json:"shards"`
}

// hostSet maps a resource to the set of its active hosts.
type hostSet map[string]map[string]struct{}

func (h hostSet) add(resource string, hosts []string) {
	set, ok := h[resource]
	if !ok {
		set = make(map[string]struct{}, len(hosts))
		h[resource] = set
	}

	for _, host := range hosts {
		set[host] = struct{}{}
	}
}

// lookup returns the sorted hosts of resource, or of every resource when
// resource is "".
func (h hostSet) lookup(resource string) []string {
	union := make(map[string]struct{})
	if resource == "" {
		for _, set := range h {
			maps.Copy(union, set)
		}
	} else {
		union = h[resource]
	}

	return slices.Sorted(maps.Keys(union))
}

// resolveAliases makes every alias resolve to the hosts of its first member.
func (h hostSet) resolveAliases(aliases map[string]string) {
	for alias, members := range aliases {
		first, _, _ := strings.Cut(members, ",")
		h[alias] = maps.Clone(h[strings.TrimSpace(first)])
	}
}

// activeHosts returns the hosts of the active replicas of a collection.
//
// A base URL "http://host:8983/solr" is reported as "host:8983". Other
// schemes keep the full base URL.
func activeHosts(state collectionState) []string {
	var hosts []string
	for _, shard := range state.Shards {
		for _, replica := range shard.Replicas {
			if replica.State != replicaActive || replica.BaseURL == "" {
				continue
			}
			hosts = append(hosts, hostFromBaseURL(replica.BaseURL))
		}
	}

	return hosts
}

func hostFromBaseURL(baseURL string) string {
	if !strings.HasPrefix(baseURL, "http://") {
		return baseURL
	}

	host := strings.TrimPrefix(baseURL, "http://")
	host = strings.TrimSuffix(host, "/")

	return strings.TrimSuffix(host, "/solr")
}

// parseStates decodes a map of collection name to state. Empty data, as
// stored in unused znodes, decodes to an empty map.
func parseStates(data []byte) (map[string]collectionState, error) {
	states := make(map[string]collectionState)
	if len(bytes.TrimSpace(data)) == 0 {
		return states, nil
	}

	if err := json.Unmarshal(data, &states); err != nil {
		return nil, err
	}

	return states, nil
}

// parseAliases decodes /aliases.json into alias name to comma separated
// member list.
func parseAliases(data []byte) (map[string]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var aliases struct {
		Collection map[string]string `json:"collection"`
	}
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, err
	}

	return aliases.Collection, nil
}
