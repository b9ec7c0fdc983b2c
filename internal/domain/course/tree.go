package course

import "sort"

// ══════════════════════════════════════════════════════════════════════════════
// COURSE TREE
// Assembled read model of the full content hierarchy.
// ══════════════════════════════════════════════════════════════════════════════

// Tree is the fully assembled content hierarchy of one course.
// Children at every level are sorted by Order; equal Order values are
// stabilized by CreatedAt, then ID, so repeated reads of unchanged data
// produce identical output.
type Tree struct {
	Course *Course
	Units  []*TreeUnit
}

// TreeUnit is a unit with its sorted topics.
type TreeUnit struct {
	Unit   *Unit
	Topics []*TreeTopic
}

// TreeTopic is a topic with its sorted subtopics.
type TreeTopic struct {
	Topic     *Topic
	Subtopics []*Subtopic
}

// BuildTree assembles a Tree from flat node slices. Nodes whose parent is
// absent from the input are dropped. The input slices are not modified.
func BuildTree(c *Course, units []*Unit, topics []*Topic, subtopics []*Subtopic) *Tree {
	tree := &Tree{Course: c}

	topicsByUnit := make(map[string][]*Topic)
	for _, t := range topics {
		topicsByUnit[t.UnitID] = append(topicsByUnit[t.UnitID], t)
	}

	subtopicsByTopic := make(map[string][]*Subtopic)
	for _, st := range subtopics {
		subtopicsByTopic[st.TopicID] = append(subtopicsByTopic[st.TopicID], st)
	}

	sortedUnits := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u.CourseID == c.ID {
			sortedUnits = append(sortedUnits, u)
		}
	}
	sort.SliceStable(sortedUnits, func(i, j int) bool {
		return lessNode(sortedUnits[i].Order, sortedUnits[j].Order,
			sortedUnits[i].CreatedAt.UnixNano(), sortedUnits[j].CreatedAt.UnixNano(),
			sortedUnits[i].ID, sortedUnits[j].ID)
	})

	for _, u := range sortedUnits {
		tu := &TreeUnit{Unit: u}

		unitTopics := topicsByUnit[u.ID]
		sort.SliceStable(unitTopics, func(i, j int) bool {
			return lessNode(unitTopics[i].Order, unitTopics[j].Order,
				unitTopics[i].CreatedAt.UnixNano(), unitTopics[j].CreatedAt.UnixNano(),
				unitTopics[i].ID, unitTopics[j].ID)
		})

		for _, t := range unitTopics {
			tt := &TreeTopic{Topic: t}

			sts := subtopicsByTopic[t.ID]
			sort.SliceStable(sts, func(i, j int) bool {
				return lessNode(sts[i].Order, sts[j].Order,
					sts[i].CreatedAt.UnixNano(), sts[j].CreatedAt.UnixNano(),
					sts[i].ID, sts[j].ID)
			})
			tt.Subtopics = sts

			tu.Topics = append(tu.Topics, tt)
		}

		tree.Units = append(tree.Units, tu)
	}

	return tree
}

// lessNode orders content nodes by Order, then creation time, then ID.
func lessNode(orderA, orderB int, createdA, createdB int64, idA, idB string) bool {
	if orderA != orderB {
		return orderA < orderB
	}
	if createdA != createdB {
		return createdA < createdB
	}
	return idA < idB
}

// CountSubtopics returns the total number of subtopics in the tree.
// Used as the denominator for course-level completion percentage.
func (t *Tree) CountSubtopics() int {
	total := 0
	for _, u := range t.Units {
		for _, tp := range u.Topics {
			total += len(tp.Subtopics)
		}
	}
	return total
}

// FindUnit returns the unit with the given ID, or nil.
func (t *Tree) FindUnit(unitID string) *TreeUnit {
	for _, u := range t.Units {
		if u.Unit.ID == unitID {
			return u
		}
	}
	return nil
}

// FindTopic returns the topic with the given ID, or nil.
func (t *Tree) FindTopic(topicID string) *TreeTopic {
	for _, u := range t.Units {
		for _, tp := range u.Topics {
			if tp.Topic.ID == topicID {
				return tp
			}
		}
	}
	return nil
}

// FindSubtopic returns the subtopic with the given ID, or nil.
func (t *Tree) FindSubtopic(subtopicID string) *Subtopic {
	for _, u := range t.Units {
		for _, tp := range u.Topics {
			for _, st := range tp.Subtopics {
				if st.ID == subtopicID {
					return st
				}
			}
		}
	}
	return nil
}

// SubtopicIDs returns all subtopic IDs in tree order.
func (t *Tree) SubtopicIDs() []string {
	ids := make([]string, 0, t.CountSubtopics())
	for _, u := range t.Units {
		for _, tp := range u.Topics {
			for _, st := range tp.Subtopics {
				ids = append(ids, st.ID)
			}
		}
	}
	return ids
}
