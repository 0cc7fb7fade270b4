package reduce

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func bondedValidator(operator string) *RawValidator {
	v := &RawValidator{
		OperatorAddress: operator,
		Status:          BondStatusBonded,
		Tokens:          "5000000000",
		DelegatorShares: "100.000000000000000000",
	}
	v.Description.Moniker = "node-one"
	v.Description.Website = "example.com"
	v.Commission.CommissionRates.Rate = "0.100000000000000000"
	v.Commission.CommissionRates.MaxRate = "0.200000000000000000"
	return v
}

func TestValidator(t *testing.T) {
	r := testReducer(t)

	t.Run("bonded validator is active", func(t *testing.T) {
		v := r.Validator(bondedValidator("likevaloper1a"), "", "1000.000000000000000000", "", "")

		require.Equal(t, "likevaloper1a", v.ID)
		require.Equal(t, ValidatorStatusActive, v.Status)
		require.Equal(t, ValidatorStatusDetailActive, v.StatusDetailed)
		require.Equal(t, "node-one", v.Name)
		require.Equal(t, "0.100000", v.VotingPower)
		require.Equal(t, "5.000000000", v.Tokens)
		require.Equal(t, "0.100000", v.Commission)
		require.Equal(t, float64(1), v.UptimePercentage)
	})

	t.Run("bare website gains an https prefix", func(t *testing.T) {
		v := r.Validator(bondedValidator("likevaloper1a"), "", "", "", "")
		require.Equal(t, "https://example.com", v.Website)
	})

	t.Run("do-not-modify website is cleared", func(t *testing.T) {
		raw := bondedValidator("likevaloper1a")
		raw.Description.Website = "[do-not-modify]"

		v := r.Validator(raw, "", "", "", "")
		require.Empty(t, v.Website)
	})

	t.Run("unbonded validator is inactive with zero voting power", func(t *testing.T) {
		raw := bondedValidator("likevaloper1b")
		raw.Status = "BOND_STATUS_UNBONDED"

		v := r.Validator(raw, "", "1000.000000000000000000", "", "")

		require.Equal(t, ValidatorStatusInactive, v.Status)
		require.Equal(t, ValidatorStatusDetailInactive, v.StatusDetailed)
		require.Equal(t, "0", v.VotingPower)
	})

	t.Run("jailed until the far future counts as banned", func(t *testing.T) {
		raw := bondedValidator("likevaloper1c")
		raw.Status = "BOND_STATUS_UNBONDED"
		raw.Jailed = true
		raw.SigningInfo = &SigningInfo{JailedUntil: "9999-12-31T23:59:59Z"}

		v := r.Validator(raw, "", "", "", "")

		require.Equal(t, ValidatorStatusInactive, v.Status)
		require.Equal(t, ValidatorStatusDetailBanned, v.StatusDetailed)
	})

	t.Run("temporarily jailed validator is plain inactive", func(t *testing.T) {
		raw := bondedValidator("likevaloper1d")
		raw.Status = "BOND_STATUS_UNBONDED"
		raw.Jailed = true
		raw.SigningInfo = &SigningInfo{JailedUntil: "2022-07-01T00:00:00Z"}

		v := r.Validator(raw, "", "", "", "")

		require.Equal(t, ValidatorStatusDetailInactive, v.StatusDetailed)
	})

	t.Run("expected returns from annual provision and commission", func(t *testing.T) {
		v := r.Validator(bondedValidator("likevaloper1a"), "10000000000", "", "100000000000", "")

		// (1 - 0.1) * 10000000000 / 100000000000
		require.Equal(t, "0.090000", v.ExpectedReturns)
	})

	t.Run("no mint module means no expected returns", func(t *testing.T) {
		v := r.Validator(bondedValidator("likevaloper1a"), "", "", "100000000000", "")
		require.Empty(t, v.ExpectedReturns)
	})

	t.Run("uptime from the signed-blocks window", func(t *testing.T) {
		raw := bondedValidator("likevaloper1a")
		raw.SigningInfo = &SigningInfo{StartHeight: "10", MissedBlocksCounter: "500"}

		v := r.Validator(raw, "", "", "", "10000")

		require.InDelta(t, 0.95, v.UptimePercentage, 1e-9)
		require.Equal(t, "10", v.StartHeight)
	})

	t.Run("uptime defaults to 1 without a window or signing info", func(t *testing.T) {
		raw := bondedValidator("likevaloper1a")
		raw.SigningInfo = &SigningInfo{MissedBlocksCounter: "500"}

		require.Equal(t, float64(1), r.Validator(raw, "", "", "", "").UptimePercentage)
		require.Equal(t, float64(1), r.Validator(bondedValidator("likevaloper1a"), "", "", "", "10000").UptimePercentage)
	})
}
