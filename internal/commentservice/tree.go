package commentservice

import "github.com/google/uuid"

// buildThreads attaches each reply to its parent. Parent order and reply order are preserved;
// replies whose parent is not among parents are dropped.
func buildThreads(parents, replies []Comment) []CommentThread {
	byParent := make(map[uuid.UUID][]Comment, len(parents))
	for _, r := range replies {
		if r.ParentCommentID == nil {
			continue
		}
		byParent[*r.ParentCommentID] = append(byParent[*r.ParentCommentID], r)
	}

	threads := make([]CommentThread, 0, len(parents))
	for _, p := range parents {
		rs := byParent[p.ID]
		if rs == nil {
			rs = []Comment{}
		}
		threads = append(threads, CommentThread{Comment: p, Replies: rs})
	}

	return threads
}

func commentIDs(comments []Comment) []uuid.UUID {
	ids := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	return ids
}
