package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func decodeUserRecord(values []interface{}) (UserRecord, error) {
	if len(values) != 14 {
		return UserRecord{}, fmt.Errorf("users return size %d", len(values))
	}
	var (
		rec UserRecord
		err error
	)
	if rec.Referrer, err = asAddress(values[0]); err != nil {
		return UserRecord{}, fmt.Errorf("referrer: %w", err)
	}
	if rec.Rank, err = asUint8(values[1]); err != nil {
		return UserRecord{}, fmt.Errorf("rank: %w", err)
	}
	bigs := []**big.Int{&rec.ActiveDeposit, &rec.TotalDeposited}
	for i, dst := range bigs {
		if *dst, err = asBigInt(values[2+i]); err != nil {
			return UserRecord{}, fmt.Errorf("field %d: %w", 2+i, err)
		}
	}
	if rec.DepositTime, err = asUint64(values[4]); err != nil {
		return UserRecord{}, fmt.Errorf("deposit time: %w", err)
	}
	if rec.LastClaimTime, err = asUint64(values[5]); err != nil {
		return UserRecord{}, fmt.Errorf("last claim: %w", err)
	}
	if rec.ReferralEarnings, err = asBigInt(values[6]); err != nil {
		return UserRecord{}, fmt.Errorf("referral earnings: %w", err)
	}
	if rec.PendingBonus, err = asBigInt(values[7]); err != nil {
		return UserRecord{}, fmt.Errorf("pending bonus: %w", err)
	}
	if rec.DirectCount, err = asUint64(values[8]); err != nil {
		return UserRecord{}, fmt.Errorf("direct count: %w", err)
	}
	if rec.QualifiedDirects, err = asUint64(values[9]); err != nil {
		return UserRecord{}, fmt.Errorf("qualified directs: %w", err)
	}
	if rec.TeamVolume, err = asBigInt(values[10]); err != nil {
		return UserRecord{}, fmt.Errorf("team volume: %w", err)
	}
	if rec.TotalWithdrawn, err = asBigInt(values[11]); err != nil {
		return UserRecord{}, fmt.Errorf("total withdrawn: %w", err)
	}
	if rec.JoinedAt, err = asUint64(values[12]); err != nil {
		return UserRecord{}, fmt.Errorf("joined at: %w", err)
	}
	exists, ok := values[13].(bool)
	if !ok {
		return UserRecord{}, fmt.Errorf("exists: unsupported type %T", values[13])
	}
	rec.Exists = exists
	return rec, nil
}

func decodeSummary(values []interface{}) (Summary, error) {
	if len(values) != 4 {
		return Summary{}, fmt.Errorf("getUserSummary return size %d", len(values))
	}
	var (
		out Summary
		err error
	)
	if out.ActiveDeposit, err = asBigInt(values[0]); err != nil {
		return Summary{}, fmt.Errorf("active deposit: %w", err)
	}
	if out.PendingROI, err = asBigInt(values[1]); err != nil {
		return Summary{}, fmt.Errorf("pending roi: %w", err)
	}
	if out.PendingBonuses, err = asBigInt(values[2]); err != nil {
		return Summary{}, fmt.Errorf("pending bonuses: %w", err)
	}
	if out.Rank, err = asUint8(values[3]); err != nil {
		return Summary{}, fmt.Errorf("rank: %w", err)
	}
	return out, nil
}

func decodeNetwork(values []interface{}) (Network, error) {
	if len(values) != 3 {
		return Network{}, fmt.Errorf("getUserNetwork return size %d", len(values))
	}
	var (
		out Network
		err error
	)
	if out.Directs, err = asUint64(values[0]); err != nil {
		return Network{}, fmt.Errorf("directs: %w", err)
	}
	if out.Qualified, err = asUint64(values[1]); err != nil {
		return Network{}, fmt.Errorf("qualified: %w", err)
	}
	if out.TeamVolume, err = asBigInt(values[2]); err != nil {
		return Network{}, fmt.Errorf("team volume: %w", err)
	}
	return out, nil
}

func decodeTiming(values []interface{}) (Timing, error) {
	if len(values) != 3 {
		return Timing{}, fmt.Errorf("getUserTime return size %d", len(values))
	}
	var (
		out Timing
		err error
	)
	if out.DepositTime, err = asUint64(values[0]); err != nil {
		return Timing{}, fmt.Errorf("deposit time: %w", err)
	}
	if out.LastClaim, err = asUint64(values[1]); err != nil {
		return Timing{}, fmt.Errorf("last claim: %w", err)
	}
	days, err := asUint64(values[2])
	if err != nil {
		return Timing{}, fmt.Errorf("days left: %w", err)
	}
	out.DaysLeft = int64(days)
	return out, nil
}

func decodeQualification(values []interface{}) (Qualification, error) {
	if len(values) != 1 {
		return Qualification{}, fmt.Errorf("getQualifiedStatus return size %d", len(values))
	}
	switch v := values[0].(type) {
	case [5]bool:
		return Qualification(v), nil
	case []bool:
		var out Qualification
		copy(out[:], v)
		return out, nil
	default:
		return Qualification{}, fmt.Errorf("unsupported qualification type %T", values[0])
	}
}

func decodeFeeQuote(values []interface{}) (FeeQuote, error) {
	if len(values) != 2 {
		return FeeQuote{}, fmt.Errorf("getWithdrawFee return size %d", len(values))
	}
	percent, err := asUint64(values[0])
	if err != nil {
		return FeeQuote{}, fmt.Errorf("percent: %w", err)
	}
	amount, err := asBigInt(values[1])
	if err != nil {
		return FeeQuote{}, fmt.Errorf("amount: %w", err)
	}
	return FeeQuote{Percent: percent, Amount: amount}, nil
}

func decodeRankRequirement(values []interface{}) (RankRequirement, error) {
	if len(values) != 4 {
		return RankRequirement{}, fmt.Errorf("ranks return size %d", len(values))
	}
	out := make([]*big.Int, 4)
	for i := range values {
		v, err := asBigInt(values[i])
		if err != nil {
			return RankRequirement{}, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = v
	}
	return RankRequirement{TeamVolume: out[0], Directs: out[1], PersonalDeposit: out[2], ROIBoost: out[3]}, nil
}

func decodeSingleBigInt(method string, values []interface{}) (*big.Int, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%s return size %d", method, len(values))
	}
	v, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return v, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint64(value interface{}) (uint64, error) {
	v, err := asBigInt(value)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("uint64 overflow: %s", v.String())
	}
	return v.Uint64(), nil
}

func asUint8(value interface{}) (uint8, error) {
	v, err := asUint64(value)
	if err != nil {
		return 0, err
	}
	if v > 255 {
		return 0, fmt.Errorf("uint8 overflow: %d", v)
	}
	return uint8(v), nil
}
