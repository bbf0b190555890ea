package services

import (
	"strings"
	"testing"

	"github.com/asanalab/yogaflow-backend/internal/types"
)

const generatedPlanText = "Here is your plan:\n" +
	`{
	  "title": "Morning Balance Flow",
	  "duration_minutes": 15,
	  "intention": "Build steadiness",
	  "poses": [
	    {"name": "Mountain Pose", "duration_seconds": 45, "benefits": "Grounding"},
	    {"name": "Eagle Pose", "duration_seconds": 60, "benefits": "Balance"},
	    {"name": "Tree Pose", "duration_seconds": 60, "benefits": "Balance"},
	    {"name": "Child's Pose", "duration_seconds": 45, "benefits": "Rest"},
	    {"name": "Bridge Pose", "duration_seconds": 45, "benefits": "Backbend"},
	    {"name": "Warrior Pose", "duration_seconds": 60, "benefits": "Strength"}
	  ],
	  "tips": ["Breathe slowly"]
	}` + "\nEnjoy your practice!"

func TestParseGeneratedPlan(t *testing.T) {
	plan, err := ParseGeneratedPlan(generatedPlanText)
	if err != nil {
		t.Fatalf("ParseGeneratedPlan failed: %v", err)
	}
	if plan.Title != "Morning Balance Flow" || plan.DurationMinutes != 15 {
		t.Fatalf("plan header = %q/%d, want Morning Balance Flow/15", plan.Title, plan.DurationMinutes)
	}

	// Eagle is not in the catalog and must be dropped. Mountain, Child and
	// Bridge are manual; the manual cap keeps only the first two.
	names := make([]string, 0, len(plan.Poses))
	for _, p := range plan.Poses {
		names = append(names, p.Name)
	}
	for _, n := range names {
		if strings.Contains(n, "Eagle") {
			t.Fatalf("unsupported pose kept: %v", names)
		}
	}
	if len(plan.Poses) != 4 {
		t.Fatalf("poses = %v, want 4 (2 AI + capped manual)", names)
	}

	// Classifier-supported poses come first.
	if plan.Poses[0].Type != "AI" || plan.Poses[1].Type != "AI" {
		t.Fatalf("AI poses must lead: %+v", plan.Poses)
	}
	if plan.Poses[2].Type != "Manual" || plan.Poses[3].Type != "Manual" {
		t.Fatalf("manual poses must trail: %+v", plan.Poses)
	}
	if plan.Poses[0].Name != "Tree" || plan.Poses[1].Name != "Warrior" {
		t.Fatalf("AI order = %v, want [Tree Warrior]", names)
	}
}

func TestParseGeneratedPlanRejectsNoValidPoses(t *testing.T) {
	text := `{"title": "X", "poses": [{"name": "Eagle", "duration_seconds": 60}]}`
	if _, err := ParseGeneratedPlan(text); err == nil {
		t.Fatal("expected error for plan with no supported poses")
	}
}

func TestParseGeneratedPlanRejectsNonJSON(t *testing.T) {
	if _, err := ParseGeneratedPlan("I cannot help with that."); err == nil {
		t.Fatal("expected error for output without a JSON object")
	}
}

func TestParseGeneratedPlanDefaultsDurations(t *testing.T) {
	text := `{"poses": [{"name": "Tree"}]}`
	plan, err := ParseGeneratedPlan(text)
	if err != nil {
		t.Fatalf("ParseGeneratedPlan failed: %v", err)
	}
	if plan.Poses[0].DurationSeconds != 60 {
		t.Fatalf("default pose duration = %d, want 60", plan.Poses[0].DurationSeconds)
	}
	if plan.Title == "" || plan.DurationMinutes <= 0 {
		t.Fatalf("missing defaults: title=%q duration=%d", plan.Title, plan.DurationMinutes)
	}
}

func TestFallbackPlanPerLevel(t *testing.T) {
	profile := &types.OnboardingProfile{}
	profile.Experience.Level = "advanced"
	plan := FallbackPlan(profile)
	if len(plan.Poses) == 0 {
		t.Fatal("fallback plan has no poses")
	}
	found := false
	for _, p := range plan.Poses {
		if p.Name == "Shoulderstand" {
			found = true
		}
	}
	if !found {
		t.Fatalf("advanced fallback should include Shoulderstand: %+v", plan.Poses)
	}
}

func TestFallbackPlanFiltersHealthConditions(t *testing.T) {
	profile := &types.OnboardingProfile{}
	profile.Experience.Level = "advanced"
	profile.Health.Conditions = []string{"Neck injury"}
	plan := FallbackPlan(profile)
	for _, p := range plan.Poses {
		if p.Name == "Shoulderstand" {
			t.Fatal("Shoulderstand must be filtered for neck conditions")
		}
	}
}

func TestFallbackPlanUnknownLevelDefaultsToBeginner(t *testing.T) {
	profile := &types.OnboardingProfile{}
	profile.Experience.Level = "wizard"
	plan := FallbackPlan(profile)
	if !strings.HasPrefix(plan.Title, "Beginner") {
		t.Fatalf("title = %q, want Beginner plan", plan.Title)
	}
	if FallbackPlan(nil) == nil {
		t.Fatal("nil profile must still produce a plan")
	}
}
