package issues

// Column is one version lane of the release kanban.
type Column struct {
	Version string  `json:"version"`
	Issues  []Issue `json:"issues"`
}

// ReleaseProject keeps only issues of the tracker project that carries releases.
func ReleaseProject(list []Issue, projectID int64) []Issue {
	out := make([]Issue, 0, len(list))
	for _, it := range list {
		if it.GitlabProjectID == projectID {
			out = append(out, it)
		}
	}
	return out
}

// Board groups issues into one column per version in sorted order, followed by
// the 未分配 column. Each issue lands in the column of its first version label.
func Board(list []Issue) []Column {
	versions := Versions(list)
	cols := make([]Column, 0, len(versions)+1)
	idx := make(map[string]int, len(versions)+1)
	for _, v := range versions {
		idx[v] = len(cols)
		cols = append(cols, Column{Version: v, Issues: []Issue{}})
	}
	idx[NoVersion] = len(cols)
	cols = append(cols, Column{Version: NoVersion, Issues: []Issue{}})

	for _, it := range list {
		i := idx[VersionOf(it.GitlabLabels)]
		cols[i].Issues = append(cols[i].Issues, it)
	}
	return cols
}

// SelectVersion resolves the list-view selection: "all" keeps everything, an
// empty selection falls back to the first version when one exists.
func SelectVersion(list []Issue, versions []string, selected string) (string, []Issue) {
	if selected == "" {
		if len(versions) == 0 {
			return StateAll, list
		}
		selected = versions[0]
	}
	if selected == StateAll {
		return StateAll, list
	}
	out := make([]Issue, 0, len(list))
	for _, it := range list {
		if VersionOf(it.GitlabLabels) == selected {
			out = append(out, it)
		}
	}
	return selected, out
}
