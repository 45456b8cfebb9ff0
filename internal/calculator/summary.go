// Package calculator computes aggregate views over a room's expenses.
// All functions are pure; persistence and authorization live elsewhere.
package calculator

import (
	"math"
	"sort"

	"github.com/roomledger/roomledger/internal/models"
)

// Summary is the aggregate view of a room's expenses.
type Summary struct {
	Total         float64            `json:"total"`
	ApprovedTotal float64            `json:"approvedTotal"`
	PendingTotal  float64            `json:"pendingTotal"`
	RejectedTotal float64            `json:"rejectedTotal"`
	ByCategory    map[string]float64 `json:"byCategory"`
	ByRoommate    []RoommateTotal    `json:"byRoommate"`

	// EqualShare is the approved total divided evenly across the room's
	// current members, rounded to cents. Zero when the room has no members.
	EqualShare float64 `json:"equalShare"`
}

// RoommateTotal aggregates what one roommate has logged.
type RoommateTotal struct {
	RoommateID string  `json:"roommateId"`
	Name       string  `json:"name"`
	Added      float64 `json:"added"`
	Approved   float64 `json:"approved"`
}

// Summarize folds a room's expenses into totals per status, per category and
// per roommate. memberCount drives the equal-share figure; rejected expenses
// count toward the total but not toward anyone's share.
func Summarize(expenses []*models.Expense, memberCount int) Summary {
	summary := Summary{
		ByCategory: make(map[string]float64),
		ByRoommate: []RoommateTotal{},
	}

	perRoommate := make(map[string]*RoommateTotal)
	for _, expense := range expenses {
		summary.Total += expense.Amount
		summary.ByCategory[expense.Category] += expense.Amount

		switch expense.Status {
		case models.ExpenseApproved:
			summary.ApprovedTotal += expense.Amount
		case models.ExpenseRejected:
			summary.RejectedTotal += expense.Amount
		default:
			summary.PendingTotal += expense.Amount
		}

		rt, ok := perRoommate[expense.AddedByID]
		if !ok {
			rt = &RoommateTotal{RoommateID: expense.AddedByID, Name: expense.AddedByName}
			perRoommate[expense.AddedByID] = rt
		}
		rt.Added += expense.Amount
		if expense.Status == models.ExpenseApproved {
			rt.Approved += expense.Amount
		}
	}

	for _, rt := range perRoommate {
		summary.ByRoommate = append(summary.ByRoommate, *rt)
	}
	sort.Slice(summary.ByRoommate, func(i, j int) bool {
		a, b := summary.ByRoommate[i], summary.ByRoommate[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.RoommateID < b.RoommateID
	})

	summary.EqualShare = EqualShare(summary.ApprovedTotal, memberCount)
	return summary
}

// EqualShare divides an amount evenly across members, rounded to cents.
func EqualShare(total float64, members int) float64 {
	if members <= 0 {
		return 0
	}
	return math.Round(total/float64(members)*100) / 100
}
