package deploy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Publisher pushes a built site tree into a git pages repository by cloning
// it, replacing its working tree and committing.
type Publisher struct {
	RepoURL   string
	Branch    string
	SiteDir   string
	KeepLocal bool
	// Confirm is asked before the push. nil pushes unconditionally.
	Confirm func(summary string) bool
}

// AuthRepoURL embeds a personal access token into an https clone URL. An
// empty token returns the URL unchanged.
func AuthRepoURL(repoURL, token string) string {
	if token == "" {
		return repoURL
	}
	return strings.Replace(repoURL, "https://", "https://"+token+"@", 1)
}

// Publish clones the pages repo, swaps its tree for the built site, commits
// a dated update and pushes. A tree identical to the remote is a no-op.
func (p *Publisher) Publish(ctx context.Context) error {
	if p.RepoURL == "" {
		return fmt.Errorf("no pages repository configured")
	}

	clone, err := os.MkdirTemp("", "parodypress-pages-")
	if err != nil {
		return err
	}
	if p.KeepLocal {
		log.Printf("deploy: keeping local clone at %s", clone)
	} else {
		defer os.RemoveAll(clone)
	}

	args := []string{"clone", "--depth", "1"}
	if p.Branch != "" {
		args = append(args, "--branch", p.Branch)
	}
	args = append(args, p.RepoURL, clone)
	if _, err := git(ctx, "", args...); err != nil {
		return fmt.Errorf("clone pages repo: %w", err)
	}

	if err := ReplaceTree(clone, p.SiteDir); err != nil {
		return fmt.Errorf("replace tree: %w", err)
	}

	if _, err := git(ctx, clone, "add", "-A"); err != nil {
		return err
	}
	status, err := git(ctx, clone, "status", "--porcelain")
	if err != nil {
		return err
	}
	if strings.TrimSpace(status) == "" {
		log.Print("deploy: site unchanged, nothing to publish")
		return nil
	}

	msg := "Daily site update " + time.Now().Format("2006-01-02")
	if _, err := git(ctx, clone, "commit", "-m", msg); err != nil {
		return err
	}

	if p.Confirm != nil && !p.Confirm(msg) {
		log.Print("deploy: push aborted")
		return nil
	}
	if _, err := git(ctx, clone, "push"); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	log.Printf("deploy: pushed %q", msg)
	return nil
}

// ReplaceTree makes dst's contents mirror src, leaving dst's .git directory
// untouched.
func ReplaceTree(dst, src string) error {
	entries, err := os.ReadDir(dst)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return copyTree(dst, src)
}

func copyTree(dst, src string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %v: %s", args[0], err, strings.TrimSpace(buf.String()))
	}
	return buf.String(), nil
}
