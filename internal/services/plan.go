package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/asanalab/yogaflow-backend/internal/clients/gemini"
	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/poses"
	"github.com/asanalab/yogaflow-backend/internal/repos"
	"github.com/asanalab/yogaflow-backend/internal/types"
)

const maxManualPoses = 2

// PlanService generates personalized practice plans. Generation is
// best-effort: any model, parse or validation failure falls back to the
// curated per-level plan so the user always gets something practicable.
type PlanService interface {
	GeneratePlan(ctx context.Context, userID uuid.UUID) (*types.PracticePlan, *types.SessionPlan, error)
	GetPlans(ctx context.Context, userID uuid.UUID) ([]*types.PracticePlan, error)
	DailyChallenge(ctx context.Context, userID uuid.UUID) (*types.DailyChallenge, error)
}

type planService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    repos.PlanRepo
	profileRepo repos.ProfileRepo
	gemini      gemini.Client
}

// NewPlanService accepts a nil gemini client; generation then always
// serves fallback plans.
func NewPlanService(db *gorm.DB, log *logger.Logger, planRepo repos.PlanRepo, profileRepo repos.ProfileRepo, geminiClient gemini.Client) PlanService {
	serviceLog := log.With("service", "PlanService")
	return &planService{
		db:          db,
		log:         serviceLog,
		planRepo:    planRepo,
		profileRepo: profileRepo,
		gemini:      geminiClient,
	}
}

func (ps *planService) GeneratePlan(ctx context.Context, userID uuid.UUID) (*types.PracticePlan, *types.SessionPlan, error) {
	profile := ps.loadProfile(ctx, userID)

	plan, source := ps.generateOrFallback(ctx, profile)

	raw, mErr := json.Marshal(plan)
	if mErr != nil {
		return nil, nil, fmt.Errorf("failed to encode plan: %w", mErr)
	}
	row := &types.PracticePlan{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           plan.Title,
		DurationMinutes: plan.DurationMinutes,
		Intention:       plan.Intention,
		Source:          source,
		PlanJSON:        datatypes.JSON(raw),
		CreatedAt:       time.Now(),
	}
	if _, cErr := ps.planRepo.Create(ctx, nil, []*types.PracticePlan{row}); cErr != nil {
		return nil, nil, fmt.Errorf("failed to persist plan: %w", cErr)
	}
	return row, plan, nil
}

func (ps *planService) GetPlans(ctx context.Context, userID uuid.UUID) ([]*types.PracticePlan, error) {
	return ps.planRepo.GetByUserID(ctx, nil, userID)
}

// DailyChallenge asks the model for one pose suggestion and anchors it
// to the catalog. Anything unusable becomes the Tree default.
func (ps *planService) DailyChallenge(ctx context.Context, userID uuid.UUID) (*types.DailyChallenge, error) {
	challenge := &types.DailyChallenge{
		Pose:            "Tree",
		DurationSeconds: 60,
		Description:     "Hold Tree pose and focus on a steady gaze point.",
		Type:            "AI",
	}
	if ps.gemini == nil {
		return challenge, nil
	}

	profile := ps.loadProfile(ctx, userID)
	prompt := fmt.Sprintf(
		"Suggest one yoga pose as a daily challenge for a %s level practitioner. "+
			"Pick from: %s. Reply with the pose name and one sentence of guidance.",
		experienceLevel(profile), strings.Join(poses.AISupported, ", "),
	)

	text, err := ps.gemini.GenerateText(ctx, prompt)
	if err != nil {
		ps.log.Warn("Daily challenge generation failed, using default", "error", err)
		return challenge, nil
	}

	for _, p := range poses.AISupported {
		if strings.Contains(strings.ToLower(text), strings.ToLower(p)) {
			challenge.Pose = p
			challenge.Description = strings.TrimSpace(text)
			break
		}
	}
	return challenge, nil
}

func (ps *planService) loadProfile(ctx context.Context, userID uuid.UUID) *types.OnboardingProfile {
	row, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil || row == nil {
		return nil
	}
	var profile types.OnboardingProfile
	if err := json.Unmarshal(row.ProfileJSON, &profile); err != nil {
		return nil
	}
	return &profile
}

func (ps *planService) generateOrFallback(ctx context.Context, profile *types.OnboardingProfile) (*types.SessionPlan, string) {
	if ps.gemini == nil {
		return FallbackPlan(profile), types.PlanSourceFallback
	}
	text, err := ps.gemini.GenerateText(ctx, buildPlanPrompt(profile))
	if err != nil {
		ps.log.Warn("Plan generation failed, using fallback", "error", err)
		return FallbackPlan(profile), types.PlanSourceFallback
	}
	plan, pErr := ParseGeneratedPlan(text)
	if pErr != nil {
		ps.log.Warn("Generated plan unusable, using fallback", "error", pErr)
		return FallbackPlan(profile), types.PlanSourceFallback
	}
	return plan, types.PlanSourceGenerated
}

func buildPlanPrompt(profile *types.OnboardingProfile) string {
	var b strings.Builder
	b.WriteString("You are a yoga instructor. Create a single-session yoga plan as JSON with this shape: ")
	b.WriteString(`{"title": string, "duration_minutes": number, "intention": string, `)
	b.WriteString(`"poses": [{"name": string, "duration_seconds": number, "benefits": string, "modifications": string}], `)
	b.WriteString(`"tips": [string]}. `)
	b.WriteString("Only use poses from this list: ")
	b.WriteString(strings.Join(poses.All(), ", "))
	b.WriteString(". ")

	if profile != nil {
		fmt.Fprintf(&b, "Practitioner level: %s. ", experienceLevel(profile))
		if len(profile.Experience.Goals) > 0 {
			fmt.Fprintf(&b, "Goals: %s. ", strings.Join(profile.Experience.Goals, ", "))
		}
		if profile.Preferences.SessionDuration > 0 {
			fmt.Fprintf(&b, "Target duration: %d minutes. ", profile.Preferences.SessionDuration)
		}
		if len(profile.Health.Conditions) > 0 {
			fmt.Fprintf(&b, "Avoid poses that strain: %s. ", strings.Join(profile.Health.Conditions, ", "))
		}
	}
	b.WriteString("Respond with only the JSON object.")
	return b.String()
}

type rawPlan struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	Intention       string `json:"intention"`
	Poses           []struct {
		Name            string `json:"name"`
		DurationSeconds int    `json:"duration_seconds"`
		Benefits        string `json:"benefits"`
		Modifications   string `json:"modifications"`
	} `json:"poses"`
	Tips []string `json:"tips"`
}

// ParseGeneratedPlan extracts the first JSON object from model output
// and validates it against the pose catalog. Unknown poses are dropped;
// a plan with no valid poses is an error. Classifier-supported poses
// are ordered first and manual poses are capped so the session keeps
// real-time feedback in front.
func ParseGeneratedPlan(text string) (*types.SessionPlan, error) {
	blob, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}
	var raw rawPlan
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, fmt.Errorf("plan JSON invalid: %w", err)
	}

	var ai []types.PlanPose
	var manual []types.PlanPose
	for _, p := range raw.Poses {
		canonical, ok := poses.MatchSupported(p.Name)
		if !ok {
			continue
		}
		duration := p.DurationSeconds
		if duration <= 0 {
			duration = 60
		}
		pose := types.PlanPose{
			Name:            canonical,
			DurationSeconds: duration,
			Benefits:        p.Benefits,
			Modifications:   p.Modifications,
		}
		if poses.IsAISupported(canonical) {
			pose.Type = "AI"
			ai = append(ai, pose)
		} else {
			pose.Type = "Manual"
			manual = append(manual, pose)
		}
	}
	if len(manual) > maxManualPoses {
		manual = manual[:maxManualPoses]
	}
	ordered := append(ai, manual...)
	if len(ordered) == 0 {
		return nil, fmt.Errorf("plan contains no supported poses")
	}

	plan := &types.SessionPlan{
		Title:           strings.TrimSpace(raw.Title),
		DurationMinutes: raw.DurationMinutes,
		Intention:       strings.TrimSpace(raw.Intention),
		Poses:           ordered,
		Tips:            raw.Tips,
	}
	if plan.Title == "" {
		plan.Title = "Personalized Practice"
	}
	if plan.DurationMinutes <= 0 {
		total := 0
		for _, p := range ordered {
			total += p.DurationSeconds
		}
		plan.DurationMinutes = (total + 59) / 60
	}
	return plan, nil
}

func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	return text[start : end+1], nil
}

type fallbackPose struct {
	name     string
	duration int
	benefits string
}

var fallbackPlans = map[string][]fallbackPose{
	"beginner": {
		{"Mountain", 45, "Grounds posture and breath awareness"},
		{"Tree", 60, "Builds balance and ankle stability"},
		{"Child", 60, "Gently stretches the back and hips"},
		{"Cobra", 45, "Opens the chest and strengthens the spine"},
	},
	"intermediate": {
		{"Tree", 75, "Builds balance and ankle stability"},
		{"Warrior", 75, "Strengthens legs and opens hips"},
		{"Chair", 60, "Builds leg and core endurance"},
		{"Bridge", 60, "Strengthens glutes and opens the chest"},
		{"Plank", 45, "Builds core and shoulder strength"},
	},
	"advanced": {
		{"Warrior", 90, "Strengthens legs and opens hips"},
		{"Traingle", 75, "Lengthens the side body"},
		{"Shoulderstand", 60, "Inverts circulation and calms the mind"},
		{"Dog", 75, "Stretches the posterior chain"},
		{"Plank", 60, "Builds core and shoulder strength"},
	},
}

// avoidByCondition filters fallback poses that commonly aggravate the
// listed condition.
var avoidByCondition = map[string][]string{
	"back":  {"Cobra", "Bridge", "Shoulderstand"},
	"knee":  {"Chair", "Warrior"},
	"neck":  {"Shoulderstand"},
	"wrist": {"Plank", "Dog", "Downward Dog"},
}

// FallbackPlan builds the deterministic per-level plan, filtered by the
// practitioner's health conditions.
func FallbackPlan(profile *types.OnboardingProfile) *types.SessionPlan {
	level := experienceLevel(profile)
	selected, ok := fallbackPlans[level]
	if !ok {
		selected = fallbackPlans["beginner"]
	}

	avoid := map[string]bool{}
	if profile != nil {
		for _, condition := range profile.Health.Conditions {
			lowered := strings.ToLower(condition)
			for keyword, names := range avoidByCondition {
				if strings.Contains(lowered, keyword) {
					for _, n := range names {
						avoid[n] = true
					}
				}
			}
		}
	}

	var planPoses []types.PlanPose
	total := 0
	for _, fp := range selected {
		if avoid[fp.name] {
			continue
		}
		poseType := "Manual"
		if poses.IsAISupported(fp.name) {
			poseType = "AI"
		}
		planPoses = append(planPoses, types.PlanPose{
			Name:            fp.name,
			DurationSeconds: fp.duration,
			Benefits:        fp.benefits,
			Type:            poseType,
		})
		total += fp.duration
	}
	if len(planPoses) == 0 {
		planPoses = []types.PlanPose{{
			Name: "Mountain", DurationSeconds: 60,
			Benefits: "Grounds posture and breath awareness", Type: "Manual",
		}}
		total = 60
	}

	return &types.SessionPlan{
		Title:           fmt.Sprintf("%s Foundation Flow", strings.ToUpper(level[:1])+level[1:]),
		DurationMinutes: (total + 59) / 60,
		Intention:       "Move with steady breath and controlled alignment.",
		Poses:           planPoses,
		Tips: []string{
			"Breathe through the nose and keep the exhale long.",
			"Come out of any pose that causes sharp pain.",
		},
	}
}

func experienceLevel(profile *types.OnboardingProfile) string {
	if profile == nil {
		return "beginner"
	}
	level := strings.ToLower(strings.TrimSpace(profile.Experience.Level))
	switch level {
	case "intermediate", "advanced":
		return level
	default:
		return "beginner"
	}
}
