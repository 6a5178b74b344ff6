package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/lifelog/internal/logbook"
)

// ErrUnknownTemplate is returned when --template names no configured workout template.
var ErrUnknownTemplate = errors.New("unknown workout template")

func newNewCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		dateFlag     string
		timeFlag     string
		subjectFlag  string
		minutesFlag  int
		templateFlag string
		mealTypeFlag string
		foodFlags    []string
	)

	cmd := &cobra.Command{
		Use:   "new <workout|study|work|meal>",
		Short: "Create a planned log block in today's document.",
		Long:  "new appends a fresh block for the category to <logFolder>/YYYY/MM/<date>-<category>.md, creating the document with frontmatter when needed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := logbook.ParseCategory(args[0])
			if err != nil {
				return err
			}

			now := a.clock.Now()
			date, err := resolveDate(dateFlag, now)
			if err != nil {
				return err
			}
			at, err := resolveTime(date, now, timeFlag)
			if err != nil {
				return err
			}

			var record logbook.Record
			switch category {
			case logbook.CategoryWorkout:
				if templateFlag == "" {
					record = logbook.SampleWorkout()
					break
				}
				tmpl, ok := a.settings.Template(templateFlag)
				if !ok {
					return fmt.Errorf("%w: %q", ErrUnknownTemplate, templateFlag)
				}
				record = logbook.WorkoutFromTemplate(tmpl.Name, a.settings.DefaultRestDuration, tmpl.Exercises)
			case logbook.CategoryStudy:
				subject := subjectFlag
				if subject == "" && len(a.settings.Subjects) > 0 {
					subject = a.settings.Subjects[0]
				}
				minutes := minutesFlag
				if minutes <= 0 {
					minutes = a.settings.DefaultStudyDuration
				}
				record = logbook.SampleStudy(at, subject, minutes)
			case logbook.CategoryWork:
				record = logbook.SampleWork(at)
			case logbook.CategoryMeal:
				mealType, _ := logbook.ParseMealType(mealTypeFlag)
				meal := logbook.NewMeal(mealType, at.Format("2006-01-02"), foodFlags)
				if meal.Len() == 0 {
					meal.Metadata.State = logbook.StatePlanned
				}
				record = meal
			}

			created, err := a.creator.Create(ctx, at, record)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s log %q in %s (line %d)\n", category, record.Title(), created.ID, created.Span.Start)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Target date in YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&timeFlag, "time", "", "Creation time in HH:MM (default: current time)")
	cmd.Flags().StringVar(&subjectFlag, "subject", "", "Study subject (default: first configured subject)")
	cmd.Flags().IntVar(&minutesFlag, "minutes", 0, "Study target per task in minutes (default: defaultStudyDuration)")
	cmd.Flags().StringVar(&templateFlag, "template", "", "Workout template name from config.yaml")
	cmd.Flags().StringVar(&mealTypeFlag, "meal-type", "lunch", "Meal type: breakfast, lunch, dinner or snack")
	cmd.Flags().StringSliceVar(&foodFlags, "food", nil, "Food eaten (repeatable)")

	return cmd
}

func newFoodCommand(ctx context.Context, a *app) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "food <breakfast|lunch|dinner|snack> <food> [food ...]",
		Short: "Record a meal in one go.",
		Long:  "food writes a completed meal-log with every listed food ticked off.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mealType, ok := logbook.ParseMealType(args[0])
			if !ok {
				return fmt.Errorf("unknown meal type %q", args[0])
			}

			now := a.clock.Now()
			date, err := resolveDate(dateFlag, now)
			if err != nil {
				return err
			}
			at, err := resolveTime(date, now, "")
			if err != nil {
				return err
			}

			meal := logbook.NewMeal(mealType, at.Format("2006-01-02"), args[1:])
			if meal.Len() == 0 {
				return fmt.Errorf("at least one food is required")
			}
			created, err := a.creator.Create(ctx, at, meal)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s with %d item(s) in %s\n", mealType, meal.Len(), created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Target date in YYYY-MM-DD (default: today)")

	return cmd
}
