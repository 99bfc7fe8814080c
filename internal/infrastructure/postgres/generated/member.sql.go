package generated

import (
	"context"
)

const listActiveMembers = `-- name: ListActiveMembers :many
SELECT id, member_number, name, active, joined_at FROM members WHERE active = true ORDER BY id
`

func (q *Queries) ListActiveMembers(ctx context.Context) ([]Member, error) {
	rows, err := q.db.Query(ctx, listActiveMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Member
	for rows.Next() {
		var i Member
		if err := rows.Scan(
			&i.ID,
			&i.MemberNumber,
			&i.Name,
			&i.Active,
			&i.JoinedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
