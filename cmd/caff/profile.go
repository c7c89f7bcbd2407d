// ABOUTME: CLI commands for the physiological profile.
// ABOUTME: Creates, updates, and shows the profile the scores are personalized to.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/caff/internal/models"
	"github.com/spf13/cobra"
)

var (
	profileWeight         float64
	profileAge            int
	profileSex            string
	profileSmoker         bool
	profilePregnant       bool
	profileContraceptives bool
	profileFluvoxamine    bool
	profileCiprofloxacin  bool
	profileOtherCYP1A2    bool
	profileMetabolism     string
	profileAvgSleep       float64
	profileDailyMg        float64
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"p"},
	Short:   "Manage your caffeine profile",
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update your profile",
	Long: `Create or update the profile your caffeine half-life is computed from.

Only the flags you pass are changed on an existing profile. A new profile
needs --weight, --age, and --sex.

Examples:
  caff profile set --weight 70 --age 30 --sex male
  caff profile set --metabolism fast
  caff profile set --smoker=false --avg-sleep 7.5 --daily-mg 250`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID := currentUser()

		p, err := repo.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		created := p == nil
		if created {
			p = models.NewProfile(userID, 0, 0, "")
		}

		flags := cmd.Flags()
		if flags.Changed("weight") {
			p.WeightKg = profileWeight
		}
		if flags.Changed("age") {
			p.Age = profileAge
		}
		if flags.Changed("sex") {
			p.Sex = models.Sex(strings.ToLower(profileSex))
		}
		if flags.Changed("smoker") {
			p.Smoker = profileSmoker
		}
		if flags.Changed("pregnant") {
			p.Pregnant = profilePregnant
		}
		if flags.Changed("contraceptives") {
			p.OralContraceptives = profileContraceptives
		}
		if flags.Changed("fluvoxamine") {
			p.Medication.Fluvoxamine = profileFluvoxamine
		}
		if flags.Changed("ciprofloxacin") {
			p.Medication.Ciprofloxacin = profileCiprofloxacin
		}
		if flags.Changed("cyp1a2-inhibitor") {
			p.Medication.OtherCYP1A2Inhibitor = profileOtherCYP1A2
		}
		if flags.Changed("metabolism") {
			if !models.IsValidMetabolismRate(profileMetabolism) {
				return fmt.Errorf("unknown metabolism rate: %s\nValid rates: very_slow, slow, medium, fast, very_fast", profileMetabolism)
			}
			p.MetabolismRate = models.MetabolismRate(profileMetabolism)
		}
		if flags.Changed("avg-sleep") {
			p.AverageSleep7Days = profileAvgSleep
		}
		if flags.Changed("daily-mg") {
			p.MeanDailyCaffeineMg = profileDailyMg
		}

		if err := models.ValidateProfile(p.Touch()); err != nil {
			return err
		}
		if err := repo.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		if created {
			color.Green("✓ Created profile for %s", userID)
		} else {
			color.Green("✓ Updated profile for %s", userID)
		}
		printProfile(p)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := repo.GetProfile(cmd.Context(), currentUser())
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if p == nil {
			fmt.Println("No profile yet. Run 'caff profile set --weight <kg> --age <years> --sex <male|female>'.")
			return nil
		}
		printProfile(p)
		return nil
	},
}

func printProfile(p *models.Profile) {
	faint := color.New(color.Faint)
	fmt.Printf("  %s %.1f kg, %d years, %s\n", faint.Sprint("body      "), p.WeightKg, p.Age, p.Sex)
	fmt.Printf("  %s %s\n", faint.Sprint("metabolism"), p.Metabolism())

	var flags []string
	if p.Smoker {
		flags = append(flags, "smoker")
	}
	if p.Pregnant {
		flags = append(flags, "pregnant")
	}
	if p.OralContraceptives {
		flags = append(flags, "oral contraceptives")
	}
	if p.Medication.Fluvoxamine {
		flags = append(flags, "fluvoxamine")
	}
	if p.Medication.Ciprofloxacin {
		flags = append(flags, "ciprofloxacin")
	}
	if p.Medication.OtherCYP1A2Inhibitor {
		flags = append(flags, "CYP1A2 inhibitor")
	}
	if len(flags) > 0 {
		fmt.Printf("  %s %s\n", faint.Sprint("modifiers "), strings.Join(flags, ", "))
	}
	if p.AverageSleep7Days > 0 {
		fmt.Printf("  %s %.1f h\n", faint.Sprint("avg sleep "), p.AverageSleep7Days)
	}
	if p.MeanDailyCaffeineMg > 0 {
		fmt.Printf("  %s %.0f mg/day\n", faint.Sprint("habitual  "), p.MeanDailyCaffeineMg)
	}
}

func init() {
	f := profileSetCmd.Flags()
	f.Float64Var(&profileWeight, "weight", 0, "body weight in kg")
	f.IntVar(&profileAge, "age", 0, "age in years")
	f.StringVar(&profileSex, "sex", "", "male or female")
	f.BoolVar(&profileSmoker, "smoker", false, "smokes tobacco")
	f.BoolVar(&profilePregnant, "pregnant", false, "currently pregnant")
	f.BoolVar(&profileContraceptives, "contraceptives", false, "takes oral contraceptives")
	f.BoolVar(&profileFluvoxamine, "fluvoxamine", false, "takes fluvoxamine")
	f.BoolVar(&profileCiprofloxacin, "ciprofloxacin", false, "takes ciprofloxacin")
	f.BoolVar(&profileOtherCYP1A2, "cyp1a2-inhibitor", false, "takes another CYP1A2 inhibitor")
	f.StringVar(&profileMetabolism, "metabolism", "", "very_slow, slow, medium, fast, or very_fast")
	f.Float64Var(&profileAvgSleep, "avg-sleep", 0, "average sleep over the last 7 days, hours")
	f.Float64Var(&profileDailyMg, "daily-mg", 0, "habitual daily caffeine intake, mg")

	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}
