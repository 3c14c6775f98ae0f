package controller

import (
	"github.com/ytparty/server/pkg/party"
	"github.com/ytparty/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New(
		wsrouter.WithErrorReply(c.errorReply),
		wsrouter.WithLogger(c.logger),
	)

	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw(), c.metricsWSMw())

	// state
	wsrouter.Handle(mux, party.EventStateSync, c.handleStateSync)
	wsrouter.Handle(mux, party.EventStateReport, c.handleStateReport)
	wsrouter.Handle(mux, party.EventCommand, c.handleCommand)

	// queue
	wsrouter.Handle(mux, party.EventQueueSync, c.handleQueueSync)
	wsrouter.Handle(mux, party.EventQueueAddVideo, c.rateLimited(c.handleQueueAddVideo))
	wsrouter.Handle(mux, party.EventQueueRemoveVideo, c.handleQueueRemoveVideo)
	wsrouter.Handle(mux, party.EventQueueMoveVideo, c.handleQueueMoveVideo)

	// api
	wsrouter.Handle(mux, party.EventDownloadVideoMetadata, c.rateLimited(c.handleDownloadVideoMetadata))

	return mux
}
