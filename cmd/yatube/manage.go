package main

import (
	"fmt"
	"yatube/internal/db"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return db.Init(cfg)
		},
	}
}

func createGroupCmd() *cobra.Command {
	var title, slug, description string

	cmd := &cobra.Command{
		Use:   "create-group",
		Short: "Create a post group",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := db.Init(cfg); err != nil {
				return err
			}

			group, err := services.CreateGroup(cmd.Context(), db.DB, title, slug, description)
			if err != nil {
				return err
			}
			logrus.WithField("slug", group.Slug).Info("Group created")
			fmt.Fprintf(cmd.OutOrStdout(), "created group #%s (id %d)\n", group.Slug, group.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "group title")
	cmd.Flags().StringVar(&slug, "slug", "", "unique group slug")
	cmd.Flags().StringVar(&description, "description", "", "group description")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("slug")
	return cmd
}

func createModeratorCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-moderator",
		Short: "Create a user allowed to manage groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return fmt.Errorf("password must have at least 8 characters")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := db.Init(cfg); err != nil {
				return err
			}

			user, err := services.CreateUser(cmd.Context(), db.DB, services.NewUser{
				Username: username,
				Email:    email,
				Password: password,
				Role:     models.RoleModerator,
			})
			if err != nil {
				return err
			}
			logrus.WithField("username", user.Username).Info("Moderator created")
			fmt.Fprintf(cmd.OutOrStdout(), "created moderator %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}
