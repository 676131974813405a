package server

import (
	"fmt"
	"strings"

	"github.com/xxxsen/davfile/server/handler/webdav"
	"github.com/xxxsen/davfile/server/middleware"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type Server struct {
	c      *config
	bind   string
	engine *gin.Engine
}

func New(bind string, opts ...Option) (*Server, error) {
	c := applyOpts(opts...)
	if c.factory == nil || c.resOpts == nil {
		return nil, fmt.Errorf("no resource factory found")
	}
	svr := &Server{c: c, bind: bind}
	svr.engine = gin.New()
	svr.engine.Use(gin.Recovery(), middleware.RequestLogMiddleware())
	svr.initAPI(&svr.engine.RouterGroup)
	return svr, nil
}

func routeBase(baseURI string) string {
	base := strings.TrimSuffix(baseURI, "/")
	if len(base) == 0 {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}

func (s *Server) initAPI(router *gin.RouterGroup) {
	webdavRouter := router.Group(routeBase(s.c.resOpts.BaseURI))
	{
		webdavHandler := webdav.NewWebdavHandler(s.c.factory, s.c.resOpts)
		for _, method := range webdav.AllowMethods() {
			webdavRouter.Handle(method, "/*all", webdavHandler.Handler)
		}
	}
}

func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) Run() error {
	return s.engine.Run(s.bind)
}
