package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fridgechef/internal/core/mealplan"
	"fridgechef/internal/core/session"
	"fridgechef/internal/pkg/common"

	"github.com/spf13/cobra"
)

// cliLogLevel 指令模式只記錄錯誤，避免干擾輸出
const cliLogLevel = "error"

// cliUser 指令模式的草稿固定使用同一份
const cliUser = "cli"

// withApp 組裝服務後執行 fn，並印出通知
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd.Context(), cliLogLevel)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.printNotes(cmd.OutOrStdout(), fn(a))
}

// requireSession 指令需要登入時的檢查
func requireSession(cmd *cobra.Command, a *app) error {
	if _, err := a.sync.CurrentSession(cmd.Context()); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return fmt.Errorf("not signed in, run `fridgechef login` first")
		}
		return err
	}
	return nil
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				_, err := a.sync.Login(cmd.Context(), common.LoginRequest{Email: email, Password: password})
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				return a.sync.Logout(cmd.Context())
			})
		},
	}
}

func newRecipesCmd() *cobra.Command {
	var filter common.RecipeFilter

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List saved recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}
				recipes, err := a.sync.Recipes(cmd.Context(), filter)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if len(recipes) == 0 {
					fmt.Fprintln(w, "No saved recipes yet.")
				}
				for _, r := range recipes {
					fmt.Fprintf(w, "%s\t%s\t%d kcal", r.ID, r.Title, r.CaloriesEstimate)
					if token := r.SharedToken(); token != "" {
						fmt.Fprintf(w, "\t%s/shared/%s", strings.TrimRight(a.cfg.PublicURL, "/"), token)
					}
					fmt.Fprintln(w)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter.Ingredient, "ingredient", "", "only recipes using this ingredient")
	cmd.Flags().IntVar(&filter.MaxCalories, "max-calories", 0, "only recipes at or under this estimate")
	return cmd
}

func newPantryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pantry",
		Short: "List pantry items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}
				items, err := a.sync.Pantry(cmd.Context())
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(w, "Your pantry is empty.")
				}
				for _, item := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\n", item.ID, item.Name, item.DisplayQuantity())
				}
				return nil
			})
		},
	}

	var quantity, unit string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an item to the pantry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}
				_, err := a.sync.AddPantryItem(cmd.Context(), args[0], quantity, unit)
				return err
			})
		},
	}
	add.Flags().StringVar(&quantity, "quantity", "", "amount, free text")
	add.Flags().StringVar(&unit, "unit", string(common.UnitPiece), "unit of measure")

	remove := &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a pantry item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}
				return a.sync.DeletePantryItem(cmd.Context(), args[0])
			})
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func newPlanCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the meal plan for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}
				week := mealplan.WeekOf(mealplan.ParseAnchor(date, time.Now()))
				start, end := week.Range()
				entries, err := a.sync.MealPlan(cmd.Context(), start, end)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Week %s - %s\n", start, end)
				for _, day := range mealplan.BuildGrid(week, entries).Days {
					fmt.Fprintln(w, day.Label)
					for _, slot := range day.Slots {
						titles := make([]string, 0, len(slot.Entries))
						for _, e := range slot.Entries {
							titles = append(titles, mealplan.EntryTitle(e))
						}
						fmt.Fprintf(w, "  %-10s %s\n", slot.MealType, strings.Join(titles, ", "))
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week to show (YYYY-MM-DD)")

	var recipeID, day, mealType string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a saved recipe to a meal slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}
				_, err := a.sync.AddToMealPlan(cmd.Context(), recipeID, day, mealType)
				return err
			})
		},
	}
	add.Flags().StringVar(&recipeID, "recipe", "", "saved recipe id")
	add.Flags().StringVar(&day, "date", "", "day (YYYY-MM-DD)")
	add.Flags().StringVar(&mealType, "meal", string(common.MealDinner), "breakfast, lunch, dinner or snack")

	remove := &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a meal plan entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}
				return a.sync.DeleteMealPlan(cmd.Context(), args[0])
			})
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var preferences string
	var save bool

	cmd := &cobra.Command{
		Use:   "generate INGREDIENT...",
		Short: "Generate a recipe from ingredients",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := requireSession(cmd, a); err != nil {
					return err
				}

				bench := a.recipes.Workbench()
				for _, ing := range args {
					bench.AddIngredient(cliUser, ing)
				}
				bench.SetPreferences(cliUser, preferences)

				draft, err := a.recipes.Generate(cmd.Context(), cliUser)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s (%d kcal)\n\n%s\n\n", draft.Title, draft.Calories, draft.Content)

				if save {
					_, err = a.recipes.Save(cmd.Context(), cliUser)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&preferences, "preferences", "", "dietary preferences or cuisine")
	cmd.Flags().BoolVar(&save, "save", false, "save the generated recipe")
	return cmd
}
