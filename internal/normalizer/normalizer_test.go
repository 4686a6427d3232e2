package normalizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockIdentityStore 模拟申请人信息存储
type MockIdentityStore struct {
	name  string
	err   error
	calls int
}

func (m *MockIdentityStore) LookupName(ctx context.Context, applicantID string) (string, error) {
	m.calls++
	return m.name, m.err
}

// MockJobStore 模拟岗位信息存储
type MockJobStore struct {
	title        string
	requirements types.JobRequirements
	err          error
}

func (m *MockJobStore) LookupTitle(ctx context.Context, jobID string) (string, error) {
	return m.title, m.err
}

func (m *MockJobStore) LookupRequirements(ctx context.Context, jobID string) (types.JobRequirements, error) {
	return m.requirements, m.err
}

// TestNormalizeDefaults 全空记录也要产出合法的规范记录
func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer()

	rec := n.Normalize(context.Background(), types.RawApplicationRecord{
		ApplicationUUID: "uuid-1",
		JobID:           "job-1",
	})

	assert.Equal(t, "uuid-1", rec.ApplicationUUID)
	assert.Equal(t, constants.StatusApplied, rec.Status, "缺失状态应落到默认申请状态")
	assert.Equal(t, 0.0, rec.Score)
	assert.NotNil(t, rec.Profile.Skills, "画像切片必须非nil")
	assert.NotNil(t, rec.Profile.Education)
	assert.NotNil(t, rec.Profile.Experience)
	assert.NotNil(t, rec.Scoring.MatchedSkills)
	assert.NotNil(t, rec.Scoring.MissingSkills)
	assert.NotNil(t, rec.Scoring.Breakdown)
}

// TestNormalizeLegacyCandidateFields 旧版candidate_*字段收敛到新字段
func TestNormalizeLegacyCandidateFields(t *testing.T) {
	n := NewNormalizer()

	rec := n.Normalize(context.Background(), types.RawApplicationRecord{
		ApplicationUUID: "uuid-2",
		CandidateID:     "cand-001",
		CandidateName:   "旧系统用户",
	})

	assert.Equal(t, "cand-001", rec.ApplicantID)
	assert.Equal(t, "旧系统用户", rec.ApplicantName)
}

// TestNormalizeFieldPriority 新字段优先于旧字段，记录自带值优先于画像值
func TestNormalizeFieldPriority(t *testing.T) {
	n := NewNormalizer()

	rec := n.Normalize(context.Background(), types.RawApplicationRecord{
		ApplicantID:   "app-001",
		CandidateID:   "cand-001",
		ApplicantName: "新名字",
		CandidateName: "旧名字",
		Email:         "direct@example.com",
		Profile: &types.ApplicantProfile{
			Name:  "画像名字",
			Email: "profile@example.com",
			Phone: "13800138000",
		},
	})

	assert.Equal(t, "app-001", rec.ApplicantID, "新字段应优先于旧字段")
	assert.Equal(t, "新名字", rec.ApplicantName)
	assert.Equal(t, "direct@example.com", rec.Email, "记录自带值应优先于画像提取值")
	assert.Equal(t, "13800138000", rec.Phone, "记录缺失时从画像补齐")
}

// TestNormalizeScorePrecedence 旧版裸分值优先于breakdown总分
func TestNormalizeScorePrecedence(t *testing.T) {
	n := NewNormalizer()
	bareScore := 72.5

	rec := n.Normalize(context.Background(), types.RawApplicationRecord{
		Score:   &bareScore,
		Scoring: &types.ScoreBreakdown{FinalScore: 0.61},
	})
	assert.Equal(t, 72.5, rec.Score, "裸分值存在时应优先")

	rec = n.Normalize(context.Background(), types.RawApplicationRecord{
		Scoring: &types.ScoreBreakdown{FinalScore: 0.61},
	})
	assert.Equal(t, 0.61, rec.Score, "无裸分值时取breakdown总分")
}

// TestNormalizeNameLookup 姓名缺失时通过身份存储反查，画像名优先于反查
func TestNormalizeNameLookup(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		identity := &MockIdentityStore{name: "反查到的名字"}
		n := NewNormalizer(WithIdentityStore(identity))

		rec := n.Normalize(context.Background(), types.RawApplicationRecord{
			ApplicantID: "app-001",
		})
		assert.Equal(t, "反查到的名字", rec.ApplicantName)
		assert.Equal(t, 1, identity.calls)
	})

	t.Run("profile_name_wins", func(t *testing.T) {
		identity := &MockIdentityStore{name: "反查到的名字"}
		n := NewNormalizer(WithIdentityStore(identity))

		rec := n.Normalize(context.Background(), types.RawApplicationRecord{
			ApplicantID: "app-001",
			Profile:     &types.ApplicantProfile{Name: "画像名字"},
		})
		assert.Equal(t, "画像名字", rec.ApplicantName, "画像名应优先，不触发外部查询")
		assert.Equal(t, 0, identity.calls)
	})

	t.Run("lookup_error_degrades", func(t *testing.T) {
		identity := &MockIdentityStore{err: errors.New("连接超时")}
		n := NewNormalizer(WithIdentityStore(identity), WithLookupTimeout(50*time.Millisecond))

		rec := n.Normalize(context.Background(), types.RawApplicationRecord{
			ApplicantID: "app-001",
		})
		assert.Empty(t, rec.ApplicantName, "反查失败应降级为空而不是报错")
	})

	t.Run("anonymous_never_looked_up", func(t *testing.T) {
		identity := &MockIdentityStore{name: "不该出现"}
		n := NewNormalizer(WithIdentityStore(identity))

		rec := n.Normalize(context.Background(), types.RawApplicationRecord{})
		assert.Empty(t, rec.ApplicantName)
		assert.Equal(t, 0, identity.calls, "匿名投递没有ID可查")
	})
}

// TestNormalizeJobTitleLookup 岗位名称缺失时通过岗位存储反查
func TestNormalizeJobTitleLookup(t *testing.T) {
	n := NewNormalizer(WithJobStore(&MockJobStore{title: "后端工程师"}))

	rec := n.Normalize(context.Background(), types.RawApplicationRecord{JobID: "job-1"})
	assert.Equal(t, "后端工程师", rec.JobTitle)

	rec = n.Normalize(context.Background(), types.RawApplicationRecord{
		JobID:    "job-1",
		JobTitle: "记录自带标题",
	})
	assert.Equal(t, "记录自带标题", rec.JobTitle, "记录自带值不应被反查覆盖")

	n = NewNormalizer(WithJobStore(&MockJobStore{err: errors.New("岗位不存在")}))
	rec = n.Normalize(context.Background(), types.RawApplicationRecord{JobID: "job-404"})
	assert.Empty(t, rec.JobTitle, "反查失败应降级为空")
}

// TestNormalizeIdempotent 规范化结果再走一遍规则必须保持不变
func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()
	raw := types.RawApplicationRecord{
		ApplicationUUID: "uuid-3",
		JobID:           "job-1",
		CandidateID:     "cand-001",
		CandidateName:   "张三",
		Status:          constants.StatusShortlisted,
		Scoring:         &types.ScoreBreakdown{FinalScore: 0.8},
		AppliedAt:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	first := n.Normalize(context.Background(), raw)

	// 把规范化输出按规范字段回填为原始记录再规范化一次
	again := n.Normalize(context.Background(), types.RawApplicationRecord{
		ApplicationUUID: first.ApplicationUUID,
		JobID:           first.JobID,
		ApplicantID:     first.ApplicantID,
		ApplicantName:   first.ApplicantName,
		Email:           first.Email,
		Phone:           first.Phone,
		JobTitle:        first.JobTitle,
		Profile:         &first.Profile,
		Scoring:         &first.Scoring,
		Status:          first.Status,
		AppliedAt:       first.AppliedAt,
	})

	assert.Equal(t, first, again, "规范化必须幂等")
}

// TestNormalizeAll 批量规范化保持输入顺序
func TestNormalizeAll(t *testing.T) {
	n := NewNormalizer()

	out := n.NormalizeAll(context.Background(), []types.RawApplicationRecord{
		{ApplicationUUID: "a"},
		{ApplicationUUID: "b"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ApplicationUUID)
	assert.Equal(t, "b", out[1].ApplicationUUID)

	assert.Empty(t, n.NormalizeAll(context.Background(), nil))
}
