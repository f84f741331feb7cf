// Package archiveproto описывает HTTP-протокол сервиса архивов: пути, заголовки и
// тексты ответов, общие для сервера и клиента.
package archiveproto

// Параметры протокола скачивания архивов.
const (
	ArchivePathFormat = "%s/archive/%s/"
	ArchiveFilename   = "archive.zip"
	ContentType       = "application/zip"
	// NotFoundMessage отдаётся со статусом 200 вместо 404 для несуществующего архива.
	NotFoundMessage = "Archive was not found or removed"
)
