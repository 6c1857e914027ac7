package mood

import (
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/model"
)

// DefaultGroups is the number of vibe groups GroupByVibe builds when k < 1.
const DefaultGroups = 3

// Group is a set of songs with similar audio features.
type Group struct {
	Name     string             // vibe label of the centroid
	Items    []model.Item       // in input order
	Centroid map[string]float32 // mean feature values
}

type itemObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o itemObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o itemObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// featureNames defines the audio features used for grouping.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// GroupByVibe partitions items into k groups by audio features using
// k-means. Items missing any grouping feature are returned as ungrouped, as
// is everything when fewer than k items have features. Groups are ordered
// largest first.
func GroupByVibe(items []model.Item, k int) ([]Group, []model.Item) {
	if len(items) == 0 {
		return nil, nil
	}
	if k < 1 {
		k = DefaultGroups
	}

	var obs clusters.Observations
	var ungrouped []model.Item
	for i, it := range items {
		if !hasGroupingFeatures(it.AudioFeatures) {
			ungrouped = append(ungrouped, it)
			continue
		}
		obs = append(obs, itemObservation{index: i, coords: extractFeatures(it.AudioFeatures)})
	}

	if len(obs) < k {
		return nil, slices.Clone(items)
	}

	result, err := kmeans.New().Partition(obs, k)
	if err != nil {
		logging.Warn().Err(err).Int("k", k).Msg("k-means grouping failed")
		return nil, slices.Clone(items)
	}

	var groups []Group
	for _, c := range result {
		if len(c.Observations) == 0 {
			continue
		}

		indexes := make([]int, 0, len(c.Observations))
		for _, o := range c.Observations {
			if io, ok := o.(itemObservation); ok {
				indexes = append(indexes, io.index)
			}
		}
		slices.Sort(indexes)

		group := Group{Centroid: make(map[string]float32, len(featureNames))}
		for _, idx := range indexes {
			group.Items = append(group.Items, items[idx])
		}
		for i, name := range featureNames {
			group.Centroid[name] = float32(c.Center[i])
		}
		group.Name = vibeName(group.Centroid["energy"], group.Centroid["valence"], group.Centroid["acousticness"])

		groups = append(groups, group)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return len(b.Items) - len(a.Items)
	})

	return groups, ungrouped
}

func hasGroupingFeatures(f model.AudioFeatures) bool {
	return f.Energy != nil && f.Valence != nil && f.Danceability != nil && f.Acousticness != nil
}

func extractFeatures(f model.AudioFeatures) clusters.Coordinates {
	return clusters.Coordinates{
		float64(*f.Energy),
		float64(*f.Valence),
		float64(*f.Danceability),
		float64(*f.Acousticness),
	}
}
