package domain

import "strconv"

// MemberID is the store-assigned identifier of a roster member.
// IDs are positive and never reused within a session.
type MemberID int64

func (id MemberID) String() string { return strconv.FormatInt(int64(id), 10) }
