package testutil

import (
	"go.uber.org/mock/gomock"

	"payout/pkg/domain"
)

type amountMatcher struct {
	want domain.Amount
}

// AmountEq matches a domain.Amount by value. gomock.Eq compares the
// underlying big.Int representation, which is not canonical.
func AmountEq(want string) gomock.Matcher {
	return amountMatcher{want: domain.MustParseAmount(want)}
}

func (m amountMatcher) Matches(x any) bool {
	got, ok := x.(domain.Amount)
	return ok && got.Equal(m.want)
}

func (m amountMatcher) String() string {
	return "amount " + m.want.String()
}
