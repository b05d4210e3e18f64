package streaming

import "io"

// ProgressReader сообщает о количестве прочитанных байт
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(written, total int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil && n > 0 {
		pr.OnProgress(pr.bytesRead, pr.Size)
	}
	return n, err
}
