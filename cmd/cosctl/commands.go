package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/coslib/cos"
)

var lsCmd = &cobra.Command{
	Use:   "ls [bucket]",
	Short: "List buckets, or the objects in a bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if len(args) == 0 {
			buckets, err := client.ListBuckets(ctx)
			if err != nil {
				return err
			}
			for _, b := range buckets {
				fmt.Printf("%s  %s\n", b.CreationDate.Format("2006-01-02 15:04:05"), b.Name)
			}
			return nil
		}

		prefix, _ := cmd.Flags().GetString("prefix")
		startAfter, _ := cmd.Flags().GetString("start-after")

		var listOpts []cos.ListOption
		if prefix != "" {
			listOpts = append(listOpts, cos.WithPrefix(prefix))
		}
		if startAfter != "" {
			listOpts = append(listOpts, cos.WithStartAfter(startAfter))
		}

		it := client.Objects(args[0], listOpts...)
		for {
			obj, ok := it.Next(ctx)
			if !ok {
				break
			}
			fmt.Printf("%s  %12d  %s\n",
				obj.LastModified.Format("2006-01-02 15:04:05"), obj.Size, obj.Key)
		}
		return it.Err()
	},
}

var getCmd = &cobra.Command{
	Use:   "get BUCKET KEY [FILE]",
	Short: "Download an object to a local file",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		bucket, key := args[0], args[1]
		path := filepath.Base(key)
		if len(args) == 3 {
			path = args[2]
		}
		return client.DownloadFile(cmd.Context(), bucket, key, path)
	},
}

var putCmd = &cobra.Command{
	Use:   "put BUCKET KEY FILE",
	Short: "Upload a local file as an object",
	Long: `Upload a local file as an object. Files larger than the part size are
streamed as a multipart upload automatically.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		contentType, _ := cmd.Flags().GetString("content-type")
		var putOpts []cos.PutOption
		if contentType != "" {
			putOpts = append(putOpts, cos.WithContentType(contentType))
		}
		return client.UploadFile(cmd.Context(), args[0], args[1], args[2], putOpts...)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm BUCKET KEY [KEY...]",
	Short: "Delete one or more objects",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		bucket, keys := args[0], args[1:]
		if len(keys) == 1 {
			return client.DeleteObject(cmd.Context(), bucket, keys[0])
		}

		deleted, err := client.DeleteObjects(cmd.Context(), bucket, keys)
		for _, k := range deleted {
			fmt.Printf("deleted %s\n", k)
		}
		return err
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload BUCKET KEY FILE",
	Short: "Upload a file with explicit multipart settings",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		partSize, _ := cmd.Flags().GetInt64("part-size")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		client, err := newClient()
		if err != nil {
			return err
		}

		var putOpts []cos.PutOption
		if partSize > 0 {
			putOpts = append(putOpts, cos.WithUploadPartSize(partSize))
		}
		if concurrency > 0 {
			putOpts = append(putOpts, cos.WithUploadConcurrency(concurrency))
		}

		file, err := os.Open(args[2])
		if err != nil {
			return err
		}
		defer file.Close()

		return client.UploadMultipart(cmd.Context(), args[0], args[1], file, putOpts...)
	},
}

func init() {
	lsCmd.Flags().String("prefix", "", "restrict listing to keys with this prefix")
	lsCmd.Flags().String("start-after", "", "start listing after this key")
	putCmd.Flags().String("content-type", "", "override content type detection")
	uploadCmd.Flags().Int64("part-size", 0, "multipart chunk size in bytes (default 5MiB)")
	uploadCmd.Flags().Int("concurrency", 0, "part uploads in flight (default serial)")
}
