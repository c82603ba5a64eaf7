package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms_platform/internal/client"
	"lms_platform/internal/client/docstatus"
)

// docwatch 盯着一个文档直到处理终态：
//
//	docwatch -base http://localhost:8080 -lesson <id> -doc <id> -token <jwt>
func main() {
	var (
		baseURL  = flag.String("base", "http://localhost:8080", "API base URL")
		lessonID = flag.String("lesson", "", "lesson ID")
		docID    = flag.String("doc", "", "document ID")
		token    = flag.String("token", os.Getenv("LMS_TOKEN"), "bearer token (defaults to $LMS_TOKEN)")
		timeout  = flag.Duration("timeout", 10*time.Second, "per-request timeout")
	)
	flag.Parse()

	if *lessonID == "" || *docID == "" {
		fmt.Fprintln(os.Stderr, "usage: docwatch -lesson <id> -doc <id> [-base url] [-token jwt]")
		os.Exit(2)
	}

	api := client.New(*baseURL, client.StaticToken(*token), *timeout, 0, nil)
	watcher := docstatus.NewWatcher(api)
	watcher.OnStatus(func(s *docstatus.DocumentStatus) {
		fmt.Printf("[%s] %s attempts=%d", time.Now().Format("15:04:05"), s.ProcessingStatus, s.ProcessingAttempts)
		if s.ProcessingError != "" {
			fmt.Printf(" error=%q", s.ProcessingError)
		}
		fmt.Println()
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status, err := watcher.CheckAndWait(ctx, docstatus.Ref{
		LessonID:   *lessonID,
		DocumentID: *docID,
	})
	if err != nil {
		var failed *docstatus.ProcessingFailedError
		switch {
		case errors.As(err, &failed):
			fmt.Fprintln(os.Stderr, "processing failed:", failed.Message)
		case errors.Is(err, docstatus.ErrPollTimeout):
			fmt.Fprintln(os.Stderr, watcher.LastError())
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, "cancelled")
		default:
			fmt.Fprintln(os.Stderr, "watch failed:", err)
		}
		os.Exit(1)
	}

	fmt.Printf("document %s is %s (%s)\n", status.DocumentID, status.ProcessingStatus, status.Filename)
}
